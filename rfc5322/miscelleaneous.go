package rfc5322

import (
	"strings"

	"github.com/ProtonMail/mailgrammar/rfc2047"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

// 3.2.5.  Miscellaneous Tokens

type wordType int

const (
	wordTypeAtom wordType = iota
	wordTypeQuoted
	wordTypeEncoded
	wordTypeDot
)

type word struct {
	Value string
	Type  wordType

	// Unspaced is set when the word directly follows a "." with no white space in between.
	Unspaced bool
}

func parseWord(c rfcparser.Cursor) (word, rfcparser.Cursor, error) {
	// word            =   atom / quoted-string
	//
	// An atom consisting of an RFC 2047 encoded word is decoded.
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return word{}, c, err
	}

	if next.HasPrefixFold("=?") {
		w, after, err := parseEncodedWord(next)
		if err == nil {
			return w, after, nil
		} else if rfcparser.Committed(err) {
			return word{}, c, err
		}
	}

	if next.Check(rfcparser.TokenTypeDQuote) {
		s, after, err := parseQuotedString(next)
		if err != nil {
			return word{}, c, err
		}

		return word{Value: s, Type: wordTypeQuoted}, after, nil
	}

	s, after, err := parseAtom(next)
	if err != nil {
		return word{}, c, err
	}

	return word{Value: s, Type: wordTypeAtom}, after, nil
}

// parseEncodedWord parses an atom made of one or more encoded words written without separation.
func parseEncodedWord(c rfcparser.Cursor) (word, rfcparser.Cursor, error) {
	decoded, next, err := rfc2047.ParseWord(c)
	if err != nil {
		return word{}, c, err
	}

	text := decoded.Text

	for next.HasPrefixFold("=?") {
		decoded, after, err := rfc2047.ParseWord(next)
		if err != nil {
			if rfcparser.Committed(err) {
				return word{}, c, err
			}

			break
		}

		text += decoded.Text
		next = after
	}

	if next.CheckWith(isAText) {
		return word{}, c, next.MakeError("unexpected atext after encoded word")
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return word{}, c, err
	}

	return word{Value: text, Type: wordTypeEncoded}, next, nil
}

// parseLocalWord parses a word of an obsolete local part. Encoded words are not decoded there.
func parseLocalWord(c rfcparser.Cursor) (word, rfcparser.Cursor, error) {
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return word{}, c, err
	}

	if next.Check(rfcparser.TokenTypeDQuote) {
		s, after, err := parseQuotedString(next)
		if err != nil {
			return word{}, c, err
		}

		return word{Value: s, Type: wordTypeQuoted}, after, nil
	}

	s, after, err := parseAtom(next)
	if err != nil {
		return word{}, c, err
	}

	return word{Value: s, Type: wordTypeAtom}, after, nil
}

func parsePhrase(c rfcparser.Cursor) ([]word, rfcparser.Cursor, error) {
	// nolint:dupword
	// phrase          =   1*word / obs-phrase
	// obs-phrase      =   word *(word / "." / CFWS)
	first, next, err := parseWord(c)
	if err != nil {
		return nil, c, err
	}

	result := []word{first}
	unspaced := false

	for {
		if after, ok := next.Matches(rfcparser.TokenTypePeriod); ok {
			result = append(result, word{Value: ".", Type: wordTypeDot})
			unspaced = isWordStart(after)
			next = after

			continue
		}

		ok, after, err := tryParseCFWS(next)
		if err != nil {
			return nil, c, err
		} else if ok {
			unspaced = false
		}

		next = after

		if !isWordStart(next) {
			break
		}

		w, after, err := parseWord(next)
		if err != nil {
			return nil, c, err
		}

		w.Unspaced = unspaced
		unspaced = false

		result = append(result, w)
		next = after
	}

	return result, next, nil
}

func isWordStart(c rfcparser.Cursor) bool {
	return c.CheckWith(isAText) || c.Check(rfcparser.TokenTypeDQuote)
}

// joinWords builds a display name. Adjacent quoted strings and adjacent encoded words are concatenated, a "."
// attaches to the word before it, and every other pair of words is separated by a single space.
func joinWords(words []word) string {
	var b strings.Builder

	for i, w := range words {
		if i > 0 && !w.Unspaced && w.Type != wordTypeDot && !isConcatenated(words[i-1], w) {
			b.WriteByte(' ')
		}

		b.WriteString(w.Value)
	}

	return b.String()
}

func isConcatenated(prev, next word) bool {
	if prev.Type != next.Type {
		return false
	}

	return next.Type == wordTypeQuoted || next.Type == wordTypeEncoded
}
