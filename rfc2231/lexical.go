package rfc2231

import (
	"github.com/ProtonMail/mailgrammar/rfc2047"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/sirupsen/logrus"
)

// skipFWS consumes optional folding white space.
func skipFWS(c rfcparser.Cursor) rfcparser.Cursor {
	next := c

	for {
		next = rfcparser.SkipWSP(next)

		fold, ok := next.MatchesFold("\r\n")
		if !ok || !fold.CheckByteWith(rfcparser.IsWSP) {
			return next
		}

		next = fold
	}
}

func isTokenChar(b byte) bool {
	//	token := 1*<any (US-ASCII) CHAR except SPACE, CTLs,
	//	            or tspecials>
	//
	//	tspecials :=  "(" / ")" / "<" / ">" / "@" /
	//	              "," / ";" / ":" / "\" / <">
	//	              "/" / "[" / "]" / "?" / "="
	if b < 33 || b > 126 {
		return false
	}

	switch b {
	case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '/', '[', ']', '?', '=':
		return false
	}

	return true
}

func isAttributeChar(b byte) bool {
	//	attribute-char := <any (US-ASCII) CHAR except SPACE, CTLs,
	//	                  "*", "'", "%", or tspecials>
	return isTokenChar(b) && b != '*' && b != '\'' && b != '%'
}

func parseToken(c rfcparser.Cursor) ([]byte, rfcparser.Cursor, error) {
	return rfcparser.TakeWhile(isTokenChar, 1, "token")(c)
}

// parseQuotedString returns the unescaped content of a quoted string. Line breaks of folds are removed and their
// white space is kept.
func parseQuotedString(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	next, err := c.Consume(rfcparser.TokenTypeDQuote, "expected '\"' for quoted string start")
	if err != nil {
		return "", c, err
	}

	var result []byte

	for {
		b, ok := next.Peek()

		switch {
		case !ok:
			return "", c, next.MakeError("unterminated quoted string")

		case b == '"':
			return c.Config().Text(result), next.Advance(1), nil

		case b == '\\':
			v, ok := next.PeekAt(1)
			if !ok {
				return "", c, next.Advance(1).MakeError("expected quoted character")
			}

			result = append(result, v)
			next = next.Advance(2)

		case b == '\r':
			fold, ok := next.MatchesFold("\r\n")
			if !ok || !fold.CheckByteWith(rfcparser.IsWSP) {
				return "", c, next.MakeError("unexpected line break in quoted string")
			}

			next = fold

		case isQText(b) || rfcparser.IsWSP(b):
			result = append(result, b)
			next = next.Advance(1)

		default:
			return "", c, next.MakeError("unexpected character in quoted string")
		}
	}
}

func isQText(b byte) bool {
	return b == 33 || (b >= 35 && b <= 91) || (b >= 93 && b <= 126) || rfcparser.Is8Bit(b)
}

// parseValue parses a regular parameter value. In lenient mode, encoded words found inside a quoted value are
// decoded; a value whose encoded words fail to decode is kept as written.
func parseValue(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	value := token / quoted-string
	if !c.Check(rfcparser.TokenTypeDQuote) {
		token, next, err := parseToken(c)
		if err != nil {
			return "", c, err
		}

		return string(token), next, nil
	}

	value, next, err := parseQuotedString(c)
	if err != nil {
		return "", c, err
	}

	cfg := c.Config()

	if cfg.ParamQuoting != rfcparser.Lenient {
		return value, next, nil
	}

	decoded, err := rfc2047.Text(cfg, []byte(value))
	if err != nil {
		logrus.WithError(err).Debug("Keeping quoted parameter value with undecodable encoded words")

		return value, next, nil
	}

	return decoded, next, nil
}
