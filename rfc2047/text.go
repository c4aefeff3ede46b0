package rfc2047

import (
	"strings"

	"github.com/ProtonMail/mailgrammar/rfcparser"
)

// DecodeText decodes every encoded word in s. Words are only recognised when delimited by whitespace, and the
// whitespace between two adjacent encoded words is dropped.
func DecodeText(s string, opts ...rfcparser.Option) (string, error) {
	cfg := rfcparser.NewConfig(opts...)

	text, err := Text(cfg, []byte(s))

	return text, cfg.Diagnose(err)
}

// Text decodes the encoded words of an unfolded run of header text. On failure the text decoded so far is
// returned with the error.
func Text(cfg *rfcparser.Config, b []byte) (string, error) {
	var out strings.Builder

	c := rfcparser.NewCursorWithConfig(b, cfg)
	prevEncoded := false

	for !c.AtEOF() {
		space, next := c.CollectBytesWhile(isTextSpace)

		token, after := next.CollectBytesWhile(func(b byte) bool { return !isTextSpace(b) })
		if len(token) == 0 {
			out.WriteString(unfold(space))
			break
		}

		decoded, ok, err := decodeToken(next, after)
		if err != nil {
			return out.String(), err
		}

		if !ok || !prevEncoded {
			out.WriteString(unfold(space))
		}

		if ok {
			out.WriteString(decoded)
		} else {
			out.WriteString(cfg.Text(token))
		}

		prevEncoded = ok
		c = after
	}

	return out.String(), nil
}

// decodeToken decodes the text between start and end if it consists only of encoded words.
func decodeToken(start, end rfcparser.Cursor) (string, bool, error) {
	if !start.HasPrefixFold("=?") {
		return "", false, nil
	}

	var out strings.Builder

	c := start

	for c.Offset() < end.Offset() {
		word, next, err := ParseWord(c)
		if err != nil {
			if rfcparser.Committed(err) {
				return "", false, err
			}

			return "", false, nil
		}

		out.WriteString(word.Text)
		c = next
	}

	if c.Offset() != end.Offset() {
		return "", false, nil
	}

	return out.String(), true, nil
}

func isTextSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

var unfolder = strings.NewReplacer("\r", "", "\n", "")

func unfold(space []byte) string {
	return unfolder.Replace(string(space))
}
