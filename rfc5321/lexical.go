package rfc5321

import (
	"unicode/utf8"

	"github.com/ProtonMail/mailgrammar/rfcparser"
)

// allow8Bit reports whether UTF8-non-ascii octets are accepted (RFC 6531).
func allow8Bit(c rfcparser.Cursor) bool {
	return c.Config().Behaviour == rfcparser.Intl
}

// checkUTF8 fails at c when the octets collected from c are not valid UTF-8.
func checkUTF8(c rfcparser.Cursor, b []byte) error {
	if utf8.Valid(b) {
		return nil
	}

	return c.MakeError("invalid UTF-8")
}

func parseAtom(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	Atom           = 1*atext
	intl := allow8Bit(c)

	atom, next := c.CollectBytesWhile(func(b byte) bool {
		return rfcparser.IsATextByte(b) || (intl && rfcparser.Is8Bit(b))
	})
	if len(atom) == 0 {
		return "", c, c.MakeError("expected atext char for atom")
	}

	if err := checkUTF8(c, atom); err != nil {
		return "", c, err
	}

	return string(atom), next, nil
}

func parseDotString(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	Dot-string     = Atom *("."  Atom)
	_, next, err := parseAtom(c)
	if err != nil {
		return "", c, err
	}

	for {
		afterDot, ok := next.Matches(rfcparser.TokenTypePeriod)
		if !ok {
			break
		}

		if _, next, err = parseAtom(afterDot); err != nil {
			return "", c, err
		}
	}

	return string(next.Since(c)), next, nil
}

// parseQuotedString returns the unescaped content of an SMTP quoted string.
func parseQuotedString(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	Quoted-string  = DQUOTE *QcontentSMTP DQUOTE
	//	QcontentSMTP   = qtextSMTP / quoted-pairSMTP
	//	quoted-pairSMTP  = %d92 %d32-126
	//	qtextSMTP      = %d32-33 / %d35-91 / %d93-126
	next, err := c.Consume(rfcparser.TokenTypeDQuote, "expected '\"' for quoted string start")
	if err != nil {
		return "", c, err
	}

	intl := allow8Bit(c)

	var result []byte

	for {
		b, ok := next.Peek()

		switch {
		case !ok:
			return "", c, next.MakeError("unterminated quoted string")

		case b == '"':
			if err := checkUTF8(c, result); err != nil {
				return "", c, err
			}

			return string(result), next.Advance(1), nil

		case b == '\\':
			v, ok := next.PeekAt(1)
			if !ok || v < 32 || v > 126 {
				return "", c, next.Advance(1).MakeError("invalid quoted pair")
			}

			result = append(result, v)
			next = next.Advance(2)

		case (b >= 32 && b <= 126) || (intl && rfcparser.Is8Bit(b)):
			result = append(result, b)
			next = next.Advance(1)

		default:
			return "", c, next.MakeError("unexpected character in quoted string")
		}
	}
}

// parseString parses an argument of VRFY, EXPN, HELP or NOOP.
func parseString(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	String         = Atom / Quoted-string
	if c.Check(rfcparser.TokenTypeDQuote) {
		return parseQuotedString(c)
	}

	return parseAtom(c)
}

// isLineEnd reports whether c is at the end of the input or at the CRLF ending the command line.
func isLineEnd(c rfcparser.Cursor) bool {
	return c.AtEOF() || c.Check(rfcparser.TokenTypeCR)
}

// consumeLineEnd accepts trailing white space followed by the end of the input or a CRLF.
func consumeLineEnd(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	next := rfcparser.SkipWSP(c)

	if next.AtEOF() {
		return next, nil
	}

	end, err := next.ConsumeNewLine()
	if err != nil {
		return c, next.MakeError("expected end of command line")
	}

	return end, nil
}
