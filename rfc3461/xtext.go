package rfc3461

import (
	"fmt"
	"strings"

	"github.com/ProtonMail/mailgrammar/rfcparser"
)

// Orcpt is the original recipient of a RCPT command.
type Orcpt struct {
	AddrType string
	Addr     string
}

func (o Orcpt) String() string {
	return o.AddrType + ";" + EncodeXtext(o.Addr)
}

func isXChar(b byte) bool {
	//	xchar = any ASCII CHAR between "!" (33) and "~" (126) inclusive,
	//	        except for "+" and "=".
	return b >= 33 && b <= 126 && b != '+' && b != '='
}

// ParseXtext decodes xtext at c, stopping at the first byte that is neither an xchar nor a hexchar.
func ParseXtext(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	xtext   = *( xchar / hexchar )
	//	hexchar = ASCII "+" immediately followed by two upper case hexadecimal digits
	var out []byte

	next := c

	for {
		if chunk, after := next.CollectBytesWhile(isXChar); len(chunk) > 0 {
			out = append(out, chunk...)
			next = after

			continue
		}

		afterPlus, ok := next.Matches(rfcparser.TokenTypePlus)
		if !ok {
			return string(out), next, nil
		}

		v, after, err := rfcparser.HexPair(afterPlus)
		if err != nil {
			return "", c, afterPlus.MakeErrorKind(rfcparser.KindEncoding, "expected two hexadecimal digits after '+' in xtext")
		}

		out = append(out, v)
		next = after
	}
}

// DecodeXtext decodes s, which must be xtext in its entirety.
func DecodeXtext(s string, opts ...rfcparser.Option) (string, error) {
	c := rfcparser.NewCursor([]byte(s), opts...)

	text, next, err := ParseXtext(c)
	if err != nil {
		return "", c.Config().Diagnose(err)
	}

	if !next.AtEOF() {
		return "", c.Config().Diagnose(next.MakeError("unexpected character in xtext"))
	}

	return text, nil
}

// EncodeXtext escapes every byte of s that is not an xchar as a hexchar.
func EncodeXtext(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if isXChar(s[i]) {
			b.WriteByte(s[i])
		} else {
			fmt.Fprintf(&b, "+%02X", s[i])
		}
	}

	return b.String()
}

func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; !(b >= 32 && b <= 126) && !(b >= '\t' && b <= '\r') {
			return false
		}
	}

	return true
}

// parsePrintableXtext decodes xtext whose content must be printable US-ASCII.
func parsePrintableXtext(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	text, next, err := ParseXtext(c)
	if err != nil {
		return "", c, err
	}

	if !isPrintable(text) {
		return "", c, c.MakeErrorKind(rfcparser.KindEncoding, "xtext decodes to non printable characters")
	}

	return text, next, nil
}

func parseOrcpt(c rfcparser.Cursor) (Orcpt, rfcparser.Cursor, error) {
	//	original-recipient-address = addr-type ";" xtext
	//	addr-type = atom
	addrType, next := c.CollectBytesWhile(rfcparser.IsATextByte)
	if len(addrType) == 0 {
		return Orcpt{}, c, c.MakeError("expected atom for address type")
	}

	next, err := next.Consume(rfcparser.TokenTypeSemicolon, "expected ';' after address type")
	if err != nil {
		return Orcpt{}, c, err
	}

	addr, next, err := parsePrintableXtext(next)
	if err != nil {
		return Orcpt{}, c, err
	}

	return Orcpt{AddrType: string(addrType), Addr: addr}, next, nil
}

// OrcptAddress decodes the value of an ORCPT parameter into its address type and original recipient address.
func OrcptAddress(b []byte, opts ...rfcparser.Option) (Orcpt, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	orcpt, next, err := parseOrcpt(c)
	if err != nil {
		return Orcpt{}, b, c.Config().Diagnose(err)
	}

	return orcpt, next.Rest(), nil
}
