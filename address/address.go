// Package address holds the mailbox value types shared by the message format and SMTP grammars.
package address

import (
	"strings"

	"golang.org/x/net/idna"
)

// LocalPart is the part of an address preceding the "@".
type LocalPart struct {
	// Value is the decoded local part, without quotes or escapes.
	Value string

	// Quoted is set when the local part was written as a quoted string.
	Quoted bool
}

func DotAtom(value string) LocalPart {
	return LocalPart{Value: value}
}

func QuotedString(value string) LocalPart {
	return LocalPart{Value: value, Quoted: true}
}

// String returns the local part as it would be written in an address.
func (l LocalPart) String() string {
	if !l.Quoted {
		return l.Value
	}

	return Quote(l.Value)
}

// Quote encloses s in double quotes, escaping double quotes and backslashes.
func Quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}

		b.WriteByte(s[i])
	}

	b.WriteByte('"')

	return b.String()
}

// DomainPart is the part of an address following the "@": either a domain name or an address literal.
type DomainPart struct {
	Domain  string
	Literal *AddressLiteral
}

func Domain(domain string) DomainPart {
	return DomainPart{Domain: domain}
}

func Literal(literal AddressLiteral) DomainPart {
	return DomainPart{Literal: &literal}
}

func (d DomainPart) IsLiteral() bool {
	return d.Literal != nil
}

func (d DomainPart) String() string {
	if d.Literal != nil {
		return d.Literal.String()
	}

	return d.Domain
}

// ASCII returns the domain in its IDNA A-label form. Address literals are returned unchanged.
func (d DomainPart) ASCII() (string, error) {
	if d.Literal != nil {
		return d.Literal.String(), nil
	}

	return idna.Lookup.ToASCII(d.Domain)
}

// Unicode returns the domain in its IDNA U-label form. Address literals are returned unchanged.
func (d DomainPart) Unicode() (string, error) {
	if d.Literal != nil {
		return d.Literal.String(), nil
	}

	return idna.Lookup.ToUnicode(d.Domain)
}

// Mailbox is an addr-spec: a local part and a domain part.
type Mailbox struct {
	LocalPart LocalPart
	Domain    DomainPart
}

func (m Mailbox) String() string {
	return m.LocalPart.String() + "@" + m.Domain.String()
}
