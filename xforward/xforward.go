// Package xforward decodes the attribute list of the Postfix XFORWARD SMTP extension, which a proxy uses to pass
// the original client's details to the next hop.
package xforward

import (
	"fmt"
	"strings"

	"github.com/ProtonMail/mailgrammar/rfc3461"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

const (
	Addr   = "ADDR"
	Helo   = "HELO"
	Ident  = "IDENT"
	Name   = "NAME"
	Port   = "PORT"
	Proto  = "PROTO"
	Source = "SOURCE"
)

var attributes = map[string]string{
	"addr":   Addr,
	"helo":   Helo,
	"ident":  Ident,
	"name":   Name,
	"port":   Port,
	"proto":  Proto,
	"source": Source,
}

const unavailable = "[UNAVAILABLE]"

// Param is one attribute. Name is one of the upper case attribute names above. Value holds the xtext decoded value
// unless the client marked it as unavailable.
type Param struct {
	Name        string
	Value       string
	Unavailable bool
}

func (p Param) String() string {
	if p.Unavailable {
		return p.Name + "=" + unavailable
	}

	return p.Name + "=" + rfc3461.EncodeXtext(p.Value)
}

// Params decodes a white space separated XFORWARD attribute list, up to the end of the line. On failure the
// attributes before the failing one are returned with the input starting at the white space that precedes it.
func Params(b []byte, opts ...rfcparser.Option) ([]Param, []byte, error) {
	//	xforward-command = XFORWARD 1*( SP attribute-name"="attribute-value )
	c := rfcparser.NewCursor(b, opts...)

	first, next, err := parseParam(rfcparser.SkipWSP(c))
	if err != nil {
		return nil, b, c.Config().Diagnose(err)
	}

	params := []Param{first}

	for {
		afterWSP := rfcparser.SkipWSP(next)

		if afterWSP.AtEOF() {
			return params, afterWSP.Rest(), nil
		}

		if end, err := afterWSP.ConsumeNewLine(); err == nil {
			return params, end.Rest(), nil
		}

		if afterWSP.Offset() == next.Offset() {
			return params, next.Rest(), c.Config().Diagnose(next.MakeError("expected white space between attributes"))
		}

		p, after, err := parseParam(afterWSP)
		if err != nil {
			return params, next.Rest(), c.Config().Diagnose(err)
		}

		params = append(params, p)
		next = after
	}
}

func parseParam(c rfcparser.Cursor) (Param, rfcparser.Cursor, error) {
	name, next := c.CollectBytesWhile(rfcparser.IsAlphaByte)
	if len(name) == 0 {
		return Param{}, c, c.MakeError("expected attribute name")
	}

	canonical, ok := attributes[strings.ToLower(string(name))]
	if !ok {
		return Param{}, c, c.MakeErrorKind(rfcparser.KindRange, fmt.Sprintf("unknown XFORWARD attribute '%s'", name))
	}

	next, err := next.Consume(rfcparser.TokenTypeEqual, "expected '=' after attribute name")
	if err != nil {
		return Param{}, c, err
	}

	//	attribute-value = xtext / "[UNAVAILABLE]"
	if after, ok := next.MatchesFold(unavailable); ok {
		return Param{Name: canonical, Unavailable: true}, after, nil
	}

	value, next, err := rfc3461.ParseXtext(next)
	if err != nil {
		return Param{}, c, err
	}

	return Param{Name: canonical, Value: value}, next, nil
}
