package address

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

type LiteralKind int

const (
	// LiteralIP is an IPv4 or IPv6 address literal.
	LiteralIP LiteralKind = iota
	// LiteralTagged is a general address literal in the form tag:value.
	LiteralTagged
	// LiteralFreeForm is a message format domain literal that was not interpreted.
	LiteralFreeForm
)

var ErrInvalidLiteral = errors.New("invalid address literal")

// AddressLiteral is the content of a bracketed domain.
type AddressLiteral struct {
	Kind LiteralKind

	IP netip.Addr

	// Tag and Value are set for tagged literals. Value alone holds the content of a free-form literal.
	Tag   string
	Value string
}

func IPLiteral(ip netip.Addr) AddressLiteral {
	return AddressLiteral{Kind: LiteralIP, IP: ip}
}

func TaggedLiteral(tag, value string) AddressLiteral {
	return AddressLiteral{Kind: LiteralTagged, Tag: tag, Value: value}
}

func FreeFormLiteral(value string) AddressLiteral {
	return AddressLiteral{Kind: LiteralFreeForm, Value: value}
}

func (a AddressLiteral) String() string {
	switch a.Kind {
	case LiteralIP:
		if a.IP.Is4() {
			return "[" + a.IP.String() + "]"
		}

		return "[IPv6:" + a.IP.String() + "]"

	case LiteralTagged:
		return "[" + a.Tag + ":" + a.Value + "]"

	default:
		return "[" + a.Value + "]"
	}
}

// Upgrade interprets a free-form literal as an IP or tagged literal.
func (a AddressLiteral) Upgrade() (AddressLiteral, error) {
	if a.Kind != LiteralFreeForm {
		return AddressLiteral{}, fmt.Errorf("%w: only free-form literals can be upgraded", ErrInvalidLiteral)
	}

	return ParseLiteral(a.Value)
}

// ParseLiteral parses the content between the brackets of an SMTP address literal:
//
//	address-literal  = "[" ( IPv4-address-literal /
//	                   IPv6-address-literal /
//	                   General-address-literal ) "]"
//	General-address-literal  = Standardized-tag ":" 1*dcontent
func ParseLiteral(s string) (AddressLiteral, error) {
	tag, value, found := strings.Cut(s, ":")
	if !found {
		ip, err := netip.ParseAddr(s)
		if err != nil || !ip.Is4() {
			return AddressLiteral{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidLiteral, s)
		}

		return IPLiteral(ip), nil
	}

	if strings.EqualFold(tag, "IPv6") {
		ip, err := netip.ParseAddr(value)
		if err != nil || !ip.Is6() || ip.Zone() != "" {
			return AddressLiteral{}, fmt.Errorf("%w: %q is not an IPv6 address", ErrInvalidLiteral, value)
		}

		return IPLiteral(ip), nil
	}

	if !isLdhStr(tag) {
		return AddressLiteral{}, fmt.Errorf("%w: invalid tag %q", ErrInvalidLiteral, tag)
	}

	if value == "" {
		return AddressLiteral{}, fmt.Errorf("%w: empty value for tag %q", ErrInvalidLiteral, tag)
	}

	for i := 0; i < len(value); i++ {
		if !IsDcontent(value[i]) {
			return AddressLiteral{}, fmt.Errorf("%w: invalid character %q", ErrInvalidLiteral, value[i])
		}
	}

	return TaggedLiteral(tag, value), nil
}

// IsDcontent reports whether b may appear in a general address literal value.
func IsDcontent(b byte) bool {
	return (b >= 33 && b <= 90) || (b >= 94 && b <= 126)
}

// Ldh-str = *( ALPHA / DIGIT / "-" ) Let-dig
func isLdhStr(s string) bool {
	if s == "" || s[len(s)-1] == '-' {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}

	return true
}
