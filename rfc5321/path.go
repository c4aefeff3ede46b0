package rfc5321

import (
	"bytes"
	"strings"

	"github.com/ProtonMail/mailgrammar/address"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"golang.org/x/net/idna"
)

// Path is an envelope address.
type Path struct {
	Mailbox address.Mailbox

	// Route holds the domains of an obsolete source route. They are kept as written and not interpreted.
	Route []string
}

func (p Path) String() string {
	return "<" + p.Mailbox.String() + ">"
}

// ReversePath is the sender of a MAIL command. A nil Path is the null reverse path "<>".
type ReversePath struct {
	Path *Path
}

func (r ReversePath) IsNull() bool {
	return r.Path == nil
}

func (r ReversePath) String() string {
	if r.Path == nil {
		return "<>"
	}

	return r.Path.String()
}

// ForwardPath is the recipient of a RCPT command.
type ForwardPath struct {
	Path Path

	// Postmaster is set for the postmaster recipient. It may be written without a domain, in which case the domain
	// of the path is empty.
	Postmaster bool
}

func (f ForwardPath) String() string {
	if f.Postmaster && f.Path.Mailbox.Domain == (address.DomainPart{}) {
		return "<" + f.Path.Mailbox.LocalPart.String() + ">"
	}

	return f.Path.String()
}

func parseReversePath(c rfcparser.Cursor) (ReversePath, rfcparser.Cursor, error) {
	//	Reverse-path   = Path / "<>"
	if next, ok := c.MatchesFold("<>"); ok {
		return ReversePath{}, next, nil
	}

	path, next, err := parsePath(c)
	if err != nil {
		return ReversePath{}, c, err
	}

	return ReversePath{Path: &path}, next, nil
}

func parseForwardPath(c rfcparser.Cursor) (ForwardPath, rfcparser.Cursor, error) {
	//	Forward-path   = Path
	//
	//	Rcpt = "RCPT TO:" ( "<Postmaster@" Domain ">" / "<Postmaster>" /
	//	       Forward-path ) [SP Rcpt-parameters] CRLF
	if next, ok := c.MatchesFold("<postmaster>"); ok {
		written := next.Since(c)
		localPart := address.DotAtom(string(written[1 : len(written)-1]))

		return ForwardPath{Path: Path{Mailbox: address.Mailbox{LocalPart: localPart}}, Postmaster: true}, next, nil
	}

	path, next, err := parsePath(c)
	if err != nil {
		return ForwardPath{}, c, err
	}

	localPart := path.Mailbox.LocalPart

	return ForwardPath{
		Path:       path,
		Postmaster: !localPart.Quoted && strings.EqualFold(localPart.Value, "postmaster"),
	}, next, nil
}

func parsePath(c rfcparser.Cursor) (Path, rfcparser.Cursor, error) {
	//	Path           = "<" [ A-d-l ":" ] Mailbox ">"
	next, err := c.Consume(rfcparser.TokenTypeLess, "expected '<' for path start")
	if err != nil {
		return Path{}, c, err
	}

	var route []string

	if next.Check(rfcparser.TokenTypeAt) {
		if route, next, err = parseADL(next); err != nil {
			return Path{}, c, err
		}

		if next, err = next.Consume(rfcparser.TokenTypeColon, "expected ':' after source route"); err != nil {
			return Path{}, c, err
		}
	}

	mailbox, next, err := parseMailbox(next)
	if err != nil {
		return Path{}, c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeGreater, "expected '>' for path end"); err != nil {
		return Path{}, c, err
	}

	if err := c.Config().Limits.CheckPathLength(next.Offset() - c.Offset()); err != nil {
		return Path{}, c, c.WrapError(rfcparser.KindRange, err, err.Error())
	}

	return Path{Mailbox: mailbox, Route: route}, next, nil
}

func parseADL(c rfcparser.Cursor) ([]string, rfcparser.Cursor, error) {
	//	A-d-l          = At-domain *( "," At-domain )
	//	At-domain      = "@" Domain
	atDomain := rfcparser.Preceded[byte, string](rfcparser.Byte('@'), parseDomain)

	return rfcparser.SeparatedList[string, byte](atDomain, rfcparser.Byte(','))(c)
}

func parseMailbox(c rfcparser.Cursor) (address.Mailbox, rfcparser.Cursor, error) {
	//	Mailbox        = Local-part "@" ( Domain / address-literal )
	localPart, next, err := parseLocalPart(c)
	if err != nil {
		return address.Mailbox{}, c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeAt, "expected '@' after local-part"); err != nil {
		return address.Mailbox{}, c, err
	}

	domain, next, err := parseDomainPart(next)
	if err != nil {
		return address.Mailbox{}, c, err
	}

	return address.Mailbox{LocalPart: localPart, Domain: domain}, next, nil
}

func parseLocalPart(c rfcparser.Cursor) (address.LocalPart, rfcparser.Cursor, error) {
	//	Local-part     = Dot-string / Quoted-string
	var (
		localPart address.LocalPart
		next      rfcparser.Cursor
	)

	if c.Check(rfcparser.TokenTypeDQuote) {
		value, after, err := parseQuotedString(c)
		if err != nil {
			return address.LocalPart{}, c, err
		}

		localPart, next = address.QuotedString(value), after
	} else {
		value, after, err := parseDotString(c)
		if err != nil {
			return address.LocalPart{}, c, err
		}

		localPart, next = address.DotAtom(value), after
	}

	if err := c.Config().Limits.CheckLocalPartLength(next.Offset() - c.Offset()); err != nil {
		return address.LocalPart{}, c, c.WrapError(rfcparser.KindRange, err, err.Error())
	}

	return localPart, next, nil
}

func parseDomainPart(c rfcparser.Cursor) (address.DomainPart, rfcparser.Cursor, error) {
	if c.Check(rfcparser.TokenTypeLBracket) {
		literal, next, err := parseAddressLiteral(c)
		if err != nil {
			return address.DomainPart{}, c, err
		}

		return address.Literal(literal), next, nil
	}

	domain, next, err := parseDomain(c)
	if err != nil {
		return address.DomainPart{}, c, err
	}

	return address.Domain(domain), next, nil
}

func parseDomain(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	Domain         = sub-domain *("." sub-domain)
	next, err := parseSubDomain(c)
	if err != nil {
		return "", c, err
	}

	for {
		afterDot, ok := next.Matches(rfcparser.TokenTypePeriod)
		if !ok || !afterDot.CheckByteWith(isSubDomainStart(c)) {
			break
		}

		if next, err = parseSubDomain(afterDot); err != nil {
			return "", c, err
		}
	}

	domain := next.Since(c)

	if err := c.Config().Limits.CheckDomainLength(len(domain)); err != nil {
		return "", c, c.WrapError(rfcparser.KindRange, err, err.Error())
	}

	// U-labels (RFC 6531) must survive the IDNA conversion.
	if bytes.IndexFunc(domain, func(r rune) bool { return r >= 0x80 }) >= 0 {
		if _, err := idna.Lookup.ToASCII(string(domain)); err != nil {
			return "", c, c.MakeError("invalid internationalized domain: " + err.Error())
		}
	}

	return string(domain), next, nil
}

func isSubDomainStart(c rfcparser.Cursor) func(b byte) bool {
	intl := allow8Bit(c)

	return func(b byte) bool {
		return rfcparser.IsAlphaNumByte(b) || (intl && rfcparser.Is8Bit(b))
	}
}

func parseSubDomain(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	//	sub-domain     = Let-dig [Ldh-str]
	//	Let-dig        = ALPHA / DIGIT
	//	Ldh-str        = *( ALPHA / DIGIT / "-" ) Let-dig
	isStart := isSubDomainStart(c)

	if !c.CheckByteWith(isStart) {
		return c, c.MakeError("expected letter or digit for sub-domain")
	}

	label, next := c.CollectBytesWhile(func(b byte) bool {
		return isStart(b) || b == '-'
	})

	if label[len(label)-1] == '-' {
		return c, next.MakeError("sub-domain must not end with '-'")
	}

	if err := checkUTF8(c, label); err != nil {
		return c, err
	}

	return next, nil
}

func parseAddressLiteral(c rfcparser.Cursor) (address.AddressLiteral, rfcparser.Cursor, error) {
	//	address-literal  = "[" ( IPv4-address-literal /
	//	                   IPv6-address-literal /
	//	                   General-address-literal ) "]"
	next, err := c.Consume(rfcparser.TokenTypeLBracket, "expected '[' for address literal start")
	if err != nil {
		return address.AddressLiteral{}, c, err
	}

	content, next := next.CollectBytesWhile(address.IsDcontent)

	if next, err = next.Consume(rfcparser.TokenTypeRBracket, "expected ']' for address literal end"); err != nil {
		return address.AddressLiteral{}, c, err
	}

	literal, err := address.ParseLiteral(string(content))
	if err != nil {
		return address.AddressLiteral{}, c, c.WrapError(rfcparser.KindSyntax, err, err.Error())
	}

	return literal, next, nil
}
