package address

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMailboxString(t *testing.T) {
	tests := []struct {
		mailbox Mailbox
		want    string
	}{
		{
			mailbox: Mailbox{LocalPart: DotAtom("bob"), Domain: Domain("example.com")},
			want:    "bob@example.com",
		},
		{
			mailbox: Mailbox{LocalPart: QuotedString(`bob the "great" \ powerful`), Domain: Domain("example.com")},
			want:    `"bob the \"great\" \\ powerful"@example.com`,
		},
		{
			mailbox: Mailbox{LocalPart: DotAtom("bob"), Domain: Literal(IPLiteral(netip.MustParseAddr("192.0.2.1")))},
			want:    "bob@[192.0.2.1]",
		},
		{
			mailbox: Mailbox{LocalPart: DotAtom("bob"), Domain: Literal(IPLiteral(netip.MustParseAddr("2001:db8::1")))},
			want:    "bob@[IPv6:2001:db8::1]",
		},
	}

	for _, test := range tests {
		require.Equal(t, test.want, test.mailbox.String())
	}
}

func TestParseLiteral(t *testing.T) {
	lit, err := ParseLiteral("192.0.2.1")
	require.NoError(t, err)
	require.Equal(t, IPLiteral(netip.MustParseAddr("192.0.2.1")), lit)

	lit, err = ParseLiteral("IPv6:2001:db8::1")
	require.NoError(t, err)
	require.Equal(t, IPLiteral(netip.MustParseAddr("2001:db8::1")), lit)

	lit, err = ParseLiteral("x400:cn=bob,dc=example,dc=org")
	require.NoError(t, err)
	require.Equal(t, TaggedLiteral("x400", "cn=bob,dc=example,dc=org"), lit)
	require.Equal(t, "[x400:cn=bob,dc=example,dc=org]", lit.String())

	for _, input := range []string{"somewhere", "IPv6:192.0.2.1", "x-:y", "x_y:z", "tag:", "tag:a[b"} {
		_, err := ParseLiteral(input)
		require.ErrorIs(t, err, ErrInvalidLiteral, input)
	}
}

func TestUpgrade(t *testing.T) {
	valid, err := FreeFormLiteral("192.0.2.1").Upgrade()
	require.NoError(t, err)
	require.Equal(t, IPLiteral(netip.MustParseAddr("192.0.2.1")), valid)

	_, err = FreeFormLiteral("somewhere").Upgrade()
	require.Error(t, err)

	_, err = valid.Upgrade()
	require.Error(t, err)
}

func TestDomainIDNA(t *testing.T) {
	ascii, err := Domain("bücher.example").ASCII()
	require.NoError(t, err)
	require.Equal(t, "xn--bcher-kva.example", ascii)

	unicode, err := Domain("xn--bcher-kva.example").Unicode()
	require.NoError(t, err)
	require.Equal(t, "bücher.example", unicode)

	lit, err := Literal(FreeFormLiteral("somewhere")).ASCII()
	require.NoError(t, err)
	require.Equal(t, "[somewhere]", lit)
}
