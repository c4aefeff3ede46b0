// Package rfc2047 decodes MIME encoded words as defined by RFC 2047, with the language extension of RFC 2231.
package rfc2047

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ProtonMail/mailgrammar/reporter"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownCharset  = errors.New("unknown charset")
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrInvalidPayload  = errors.New("invalid encoded text")
)

// Encoding is the transfer encoding of an encoded word.
type Encoding byte

const (
	EncodingB Encoding = 'B'
	EncodingQ Encoding = 'Q'
)

// Word is a decoded encoded word.
type Word struct {
	Charset  string
	Language string
	Encoding Encoding
	Text     string
}

// EncodedWord decodes a single encoded word at the start of b.
func EncodedWord(b []byte, opts ...rfcparser.Option) (Word, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	word, next, err := ParseWord(c)
	if err != nil {
		return Word{}, b, c.Config().Diagnose(err)
	}

	return word, next.Rest(), nil
}

// DecodeWord decodes s, which must consist of exactly one encoded word, and returns its text.
func DecodeWord(s string, opts ...rfcparser.Option) (string, error) {
	c := rfcparser.NewCursor([]byte(s), opts...)

	word, next, err := ParseWord(c)
	if err != nil {
		return "", c.Config().Diagnose(err)
	}

	if !next.AtEOF() {
		return "", c.Config().Diagnose(next.MakeError("unexpected input after encoded word"))
	}

	return word.Text, nil
}

// ParseWord parses and decodes an encoded word at the cursor.
//
//	encoded-word = "=?" charset ["*" language] "?" encoding "?" encoded-text "?="
func ParseWord(c rfcparser.Cursor) (Word, rfcparser.Cursor, error) {
	next, err := c.ConsumeBytes('=', '?')
	if err != nil {
		return Word{}, c, err
	}

	charset, next := next.CollectBytesWhile(isCharsetChar)
	if len(charset) == 0 {
		return Word{}, c, next.MakeError("expected charset in encoded word")
	}

	var language []byte

	if after, ok := next.MatchesByte('*'); ok {
		if language, next = after.CollectBytesWhile(isCharsetChar); len(language) == 0 {
			return Word{}, c, next.MakeError("expected language after '*'")
		}
	}

	if next, err = next.Consume(rfcparser.TokenTypeQuestion, "expected '?' after encoded word charset"); err != nil {
		return Word{}, c, err
	}

	encoding, next := next.CollectBytesWhile(isCharsetChar)
	if len(encoding) == 0 {
		return Word{}, c, next.MakeError("expected encoding in encoded word")
	}

	if next, err = next.Consume(rfcparser.TokenTypeQuestion, "expected '?' after encoded word encoding"); err != nil {
		return Word{}, c, err
	}

	text, next := next.CollectBytesWhile(isEncodedText)
	if len(text) == 0 {
		return Word{}, c, next.MakeError("expected encoded text")
	}

	if next, err = next.ConsumeBytes('?', '='); err != nil {
		return Word{}, c, err
	}

	word := Word{Charset: string(charset), Language: string(language)}

	raw, err := decodePayload(&word, encoding, text)
	if err != nil {
		return Word{}, c, c.WrapError(rfcparser.KindEncoding, err, fmt.Sprintf("failed to decode encoded word: %v", err))
	}

	decoded, err := DecodeCharset(word.Charset, raw)
	if err != nil {
		if !errors.Is(err, ErrUnknownCharset) || !c.Config().CharsetFallback {
			return Word{}, c, c.WrapError(rfcparser.KindEncoding, err, fmt.Sprintf("failed to decode encoded word: %v", err))
		}

		logrus.WithField("charset", word.Charset).Debug("Keeping encoded word with unknown charset")

		c.Config().Report("Unknown charset in encoded word", reporter.Context{
			"charset": word.Charset,
			"offset":  c.Offset(),
		})

		decoded = string(next.Since(c))
	}

	word.Text = decoded

	return word, next, nil
}

func decodePayload(word *Word, encoding, text []byte) ([]byte, error) {
	if len(encoding) != 1 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}

	switch rfcparser.ByteToLower(encoding[0]) {
	case 'b':
		word.Encoding = EncodingB

		raw, err := base64.StdEncoding.Strict().DecodeString(string(text))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}

		return raw, nil

	case 'q':
		word.Encoding = EncodingQ

		return decodeQ(text)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
}

// decodeQ undoes the "Q" encoding: quoted-printable where "_" stands for a space.
func decodeQ(text []byte) ([]byte, error) {
	out := make([]byte, 0, len(text))

	c := rfcparser.NewCursor(text)

	for !c.AtEOF() {
		b, _ := c.Peek()

		switch b {
		case '=':
			v, next, err := rfcparser.HexPair(c.Advance(1))
			if err != nil {
				return nil, fmt.Errorf("%w: bad escape at offset %v", ErrInvalidPayload, c.Offset())
			}

			out = append(out, v)
			c = next

		case '_':
			out = append(out, ' ')
			c = c.Advance(1)

		default:
			out = append(out, b)
			c = c.Advance(1)
		}
	}

	return out, nil
}

func isCharsetChar(b byte) bool {
	// token = 1*<Any CHAR except SPACE, CTLs, and especials>
	//
	// especials = "(" / ")" / "<" / ">" / "@" / "," / ";" / ":" / "
	// <"> / "/" / "[" / "]" / "?" / "." / "="
	//
	// "*" separates the RFC 2231 language.
	if b < 33 || b > 126 {
		return false
	}

	switch b {
	case '(', ')', '<', '>', '@', ',', ';', ':', '"', '/', '[', ']', '?', '.', '=', '*':
		return false
	}

	return true
}

func isEncodedText(b byte) bool {
	//  encoded-text = 1*<Any printable ASCII character other than "?"
	//                     or SPACE>
	return b >= 33 && b <= 126 && b != '?'
}
