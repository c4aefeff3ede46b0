package rfc5322

import (
	"strings"

	"github.com/ProtonMail/mailgrammar/address"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

// 3.4.  Address Specification

// parseAddressList returns the addresses parsed so far together with the cursor at the element that failed.
func parseAddressList(c rfcparser.Cursor) ([]Address, rfcparser.Cursor, error) {
	// address-list    =   (address *("," address)) / obs-addr-list
	// obs-addr-list   =   *([CFWS] ",") address *("," [address / CFWS])
	var result []Address

	next := c

	for {
		_, afterCFWS, err := tryParseCFWS(next)
		if err != nil {
			return result, next, err
		}

		if after, ok := afterCFWS.Matches(rfcparser.TokenTypeComma); ok {
			next = after
			continue
		}

		if isFieldEnd(afterCFWS) {
			if len(result) == 0 {
				return nil, next, afterCFWS.MakeError("expected address")
			}

			return result, afterCFWS, nil
		}

		addr, after, err := parseAddress(afterCFWS)
		if err != nil {
			return result, next, err
		}

		result = append(result, addr)

		sep, ok := after.Matches(rfcparser.TokenTypeComma)
		if !ok {
			return result, after, nil
		}

		next = sep
	}
}

func parseAddress(c rfcparser.Cursor) (Address, rfcparser.Cursor, error) {
	//    address         =   mailbox / group
	return rfcparser.Alt[Address](
		func(c rfcparser.Cursor) (Address, rfcparser.Cursor, error) {
			return parseMailbox(c)
		},
		func(c rfcparser.Cursor) (Address, rfcparser.Cursor, error) {
			return parseGroup(c)
		},
	)(c)
}

func parseGroup(c rfcparser.Cursor) (Group, rfcparser.Cursor, error) {
	// nolint:dupword
	// group           =   display-name ":" [group-list] ";" [CFWS]
	// group-list      =   mailbox-list / CFWS / obs-group-list
	// obs-group-list  =   1*([CFWS] ",") [CFWS]
	//
	// nolint:dupword
	// mailbox-list    =   (mailbox *("," mailbox)) / obs-mbox-list
	// obs-mbox-list   =   *([CFWS] ",") mailbox *("," [mailbox / CFWS])
	words, next, err := parsePhrase(c)
	if err != nil {
		return Group{}, c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeColon, "expected ':' for group start"); err != nil {
		return Group{}, c, err
	}

	group := Group{DisplayName: joinWords(words)}

	for {
		if _, next, err = tryParseCFWS(next); err != nil {
			return Group{}, c, err
		}

		if after, ok := next.Matches(rfcparser.TokenTypeComma); ok {
			next = after
			continue
		}

		if next.Check(rfcparser.TokenTypeSemicolon) {
			break
		}

		mailbox, after, err := parseMailbox(next)
		if err != nil {
			return Group{}, c, err
		}

		group.Members = append(group.Members, mailbox)
		next = after

		if !next.Check(rfcparser.TokenTypeComma) {
			break
		}
	}

	if next, err = next.Consume(rfcparser.TokenTypeSemicolon, "expected ';' for group end"); err != nil {
		return Group{}, c, err
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return Group{}, c, err
	}

	return group, next, nil
}

func parseMailbox(c rfcparser.Cursor) (Mailbox, rfcparser.Cursor, error) {
	//    mailbox         =   name-addr / addr-spec
	return rfcparser.Alt[Mailbox](
		parseNameAddr,
		func(c rfcparser.Cursor) (Mailbox, rfcparser.Cursor, error) {
			addr, next, err := parseAddrSpec(c)
			if err != nil {
				return Mailbox{}, c, err
			}

			return Mailbox{Address: addr}, next, nil
		},
	)(c)
}

func parseNameAddr(c rfcparser.Cursor) (Mailbox, rfcparser.Cursor, error) {
	// name-addr       =   [display-name] angle-addr
	// display-name    =   phrase
	var mailbox Mailbox

	next := c

	if words, after, err := parsePhrase(c); err == nil {
		mailbox.DisplayName = joinWords(words)
		next = after
	} else if rfcparser.Committed(err) {
		return Mailbox{}, c, err
	}

	addr, next, err := parseAngleAddr(next)
	if err != nil {
		return Mailbox{}, c, err
	}

	mailbox.Address = addr

	return mailbox, next, nil
}

func parseAngleAddr(c rfcparser.Cursor) (address.Mailbox, rfcparser.Cursor, error) {
	// angle-addr      =   [CFWS] "<" addr-spec ">" [CFWS] /
	//                        obs-angle-addr
	//
	//      obs-angle-addr  =   [CFWS] "<" obs-route addr-spec ">" [CFWS]
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return address.Mailbox{}, c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeLess, "expected < for angle-addr start"); err != nil {
		return address.Mailbox{}, c, err
	}

	// The route is accepted and discarded.
	if after, err := parseObsRoute(next); err == nil {
		next = after
	}

	addr, next, err := parseAddrSpec(next)
	if err != nil {
		return address.Mailbox{}, c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeGreater, "expected > for angle-addr end"); err != nil {
		return address.Mailbox{}, c, err
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return address.Mailbox{}, c, err
	}

	return addr, next, nil
}

func parseObsRoute(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	//      obs-route       =   obs-domain-list ":"
	//
	//      obs-domain-list =   *(CFWS / ",") "@" domain
	//                          *("," [CFWS] ["@" domain])
	next := c

	for {
		ok, after, err := tryParseCFWS(next)
		if err != nil {
			return c, err
		}

		if after, matched := after.Matches(rfcparser.TokenTypeComma); matched {
			next = after
			continue
		}

		next = after

		if !ok {
			break
		}
	}

	next, err := next.Consume(rfcparser.TokenTypeAt, "expected '@' for obs-route start")
	if err != nil {
		return c, err
	}

	if _, next, err = parseDomain(next); err != nil {
		return c, err
	}

	for {
		after, ok := next.Matches(rfcparser.TokenTypeComma)
		if !ok {
			break
		}

		if _, after, err = tryParseCFWS(after); err != nil {
			return c, err
		}

		if afterAt, ok := after.Matches(rfcparser.TokenTypeAt); ok {
			if _, after, err = parseDomain(afterAt); err != nil {
				return c, err
			}
		}

		next = after
	}

	if next, err = next.Consume(rfcparser.TokenTypeColon, "expected ':' for obs-route end"); err != nil {
		return c, err
	}

	return next, nil
}

func parseAddrSpec(c rfcparser.Cursor) (address.Mailbox, rfcparser.Cursor, error) {
	//     addr-spec       =   local-part "@" domain
	localPart, next, err := parseLocalPart(c)
	if err != nil {
		return address.Mailbox{}, c, err
	}

	domain, next, err := parseDomain(next)
	if err != nil {
		return address.Mailbox{}, c, err
	}

	return address.Mailbox{LocalPart: localPart, Domain: domain}, next, nil
}

// parseLocalPart parses a local part together with the "@" that ends it, so that the obsolete form is tried when the
// strict forms stop short of the "@".
func parseLocalPart(c rfcparser.Cursor) (address.LocalPart, rfcparser.Cursor, error) {
	// nolint:dupword
	//     local-part      =   dot-atom / quoted-string / obs-local-part
	// 	   obs-local-part  =   word *("." word)
	at := rfcparser.Byte('@')

	return rfcparser.Alt[address.LocalPart](
		rfcparser.Terminated[address.LocalPart, byte](parseDotAtomLocalPart, at),
		rfcparser.Terminated[address.LocalPart, byte](parseQuotedLocalPart, at),
		rfcparser.Terminated[address.LocalPart, byte](parseObsLocalPart, at),
	)(c)
}

func parseDotAtomLocalPart(c rfcparser.Cursor) (address.LocalPart, rfcparser.Cursor, error) {
	value, next, err := parseDotAtom(c)
	if err != nil {
		return address.LocalPart{}, c, err
	}

	return address.DotAtom(value), next, nil
}

func parseQuotedLocalPart(c rfcparser.Cursor) (address.LocalPart, rfcparser.Cursor, error) {
	value, next, err := parseQuotedString(c)
	if err != nil {
		return address.LocalPart{}, c, err
	}

	return address.QuotedString(value), next, nil
}

func parseObsLocalPart(c rfcparser.Cursor) (address.LocalPart, rfcparser.Cursor, error) {
	first, next, err := parseLocalWord(c)
	if err != nil {
		return address.LocalPart{}, c, err
	}

	parts := []string{first.Value}
	quoted := first.Type == wordTypeQuoted

	for {
		afterDot, ok := next.Matches(rfcparser.TokenTypePeriod)
		if !ok {
			break
		}

		w, after, err := parseLocalWord(afterDot)
		if err != nil {
			return address.LocalPart{}, c, err
		}

		parts = append(parts, w.Value)
		quoted = quoted || w.Type == wordTypeQuoted
		next = after
	}

	value := strings.Join(parts, ".")

	if quoted {
		return address.QuotedString(value), next, nil
	}

	return address.DotAtom(value), next, nil
}

func parseDomain(c rfcparser.Cursor) (address.DomainPart, rfcparser.Cursor, error) {
	//     domain          =   dot-atom / domain-literal / obs-domain
	//
	//     obs-domain      =   atom *("." atom)
	//
	_, start, err := tryParseCFWS(c)
	if err != nil {
		return address.DomainPart{}, c, err
	}

	if start.Check(rfcparser.TokenTypeLBracket) {
		literal, next, err := parseDomainLiteral(c)
		if err != nil {
			return address.DomainPart{}, c, err
		}

		return address.Literal(address.FreeFormLiteral(literal)), next, nil
	}

	domain, next, err := parseDotAtom(c)
	if err != nil {
		return address.DomainPart{}, c, err
	}

	if next.Check(rfcparser.TokenTypePeriod) {
		if obs, after, err := parseObsDotAtom(c); err == nil && after.Offset() > next.Offset() {
			return address.Domain(obs), after, nil
		}
	}

	return address.Domain(domain), next, nil
}

// parseDomainLiteral returns the content between the brackets with folds removed. Quoted pairs are kept escaped.
func parseDomainLiteral(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//     domain-literal  =   [CFWS] "[" *([FWS] dtext) [FWS] "]" [CFWS]
	//
	//     obs-dtext       =   obs-NO-WS-CTL / quoted-pair
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return "", c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeLBracket, "expected [ for domain-literal start"); err != nil {
		return "", c, err
	}

	var result []byte

	for {
		if space, ok, after := tryParseFWS(next); ok {
			result = append(result, space...)
			next = after
		}

		if next.CheckWith(isDText) {
			var text []byte

			text, next = next.CollectWhile(isDText)
			result = append(result, text...)

			continue
		}

		if !next.Check(rfcparser.TokenTypeBackslash) {
			break
		}

		start := next

		if _, next, err = parseQuotedPair(next); err != nil {
			return "", c, err
		}

		result = append(result, next.Since(start)...)
	}

	if next, err = next.Consume(rfcparser.TokenTypeRBracket, "expected ] for domain-literal end"); err != nil {
		return "", c, err
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return "", c, err
	}

	return c.Config().Text(result), next, nil
}

func isDText(tokenType rfcparser.TokenType) bool {
	//     dtext           =   %d33-90 /          ; Printable US-ASCII
	//                         %d94-126 /         ;  characters not including
	//                         obs-dtext          ;  "[", "]", or "\"
	if (rfcparser.IsCTL(tokenType) && !isObsNoWSCTL(tokenType)) ||
		tokenType == rfcparser.TokenTypeSP ||
		tokenType == rfcparser.TokenTypeLBracket ||
		tokenType == rfcparser.TokenTypeRBracket ||
		tokenType == rfcparser.TokenTypeBackslash ||
		tokenType == rfcparser.TokenTypeEOF ||
		tokenType == rfcparser.TokenTypeError {
		return false
	}

	return true
}

// isFieldEnd reports whether c is at the end of the input or at the CRLF that ends the field.
func isFieldEnd(c rfcparser.Cursor) bool {
	return c.AtEOF() || c.Check(rfcparser.TokenTypeCR)
}
