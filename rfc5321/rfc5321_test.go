package rfc5321

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/ProtonMail/mailgrammar/address"
	"github.com/ProtonMail/mailgrammar/limits"
	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailCommand(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		path   ReversePath
		params []param.Param
	}{
		{
			name:  "null reverse path",
			input: "MAIL FROM:<>\r\n",
			path:  ReversePath{},
		},
		{
			name:  "parameters",
			input: "MAIL FROM:<bob@example.com> RET=FULL ENVID=abc123\r\n",
			path: ReversePath{Path: &Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("bob"),
				Domain:    address.Domain("example.com"),
			}}},
			params: []param.Param{
				param.NewWithValue("RET", "FULL"),
				param.NewWithValue("ENVID", "abc123"),
			},
		},
		{
			name:  "quoted local part with parameters",
			input: "MAIL FROM:<\"mr bob\"@example.com> RET=FULL ENVID=abc123\r\n",
			path: ReversePath{Path: &Path{Mailbox: address.Mailbox{
				LocalPart: address.QuotedString("mr bob"),
				Domain:    address.Domain("example.com"),
			}}},
			params: []param.Param{
				param.NewWithValue("RET", "FULL"),
				param.NewWithValue("ENVID", "abc123"),
			},
		},
		{
			name:  "quoted pairs",
			input: "MAIL FROM:<\"bob the \\\"great \\\\ powerful\\\"\"@example.com>\r\n",
			path: ReversePath{Path: &Path{Mailbox: address.Mailbox{
				LocalPart: address.QuotedString("bob the \"great \\ powerful\""),
				Domain:    address.Domain("example.com"),
			}}},
		},
		{
			name:  "source route",
			input: "MAIL FROM:<@a.example,@b.example:joe@c.example>\r\n",
			path: ReversePath{Path: &Path{
				Mailbox: address.Mailbox{LocalPart: address.DotAtom("joe"), Domain: address.Domain("c.example")},
				Route:   []string{"a.example", "b.example"},
			}},
		},
		{
			name:  "space after colon",
			input: "mail from: <joe@example.org> BODY=8BITMIME SMTPUTF8",
			path: ReversePath{Path: &Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("joe"),
				Domain:    address.Domain("example.org"),
			}}},
			params: []param.Param{
				param.NewWithValue("BODY", "8BITMIME"),
				param.New("SMTPUTF8"),
			},
		},
		{
			name:  "trailing white space",
			input: "MAIL FROM:<joe@example.org>  \r\n",
			path: ReversePath{Path: &Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("joe"),
				Domain:    address.Domain("example.org"),
			}}},
		},
		{
			name:  "UTF-8 local part",
			input: "MAIL FROM:<jöe@example.org> SMTPUTF8\r\n",
			path: ReversePath{Path: &Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("jöe"),
				Domain:    address.Domain("example.org"),
			}}},
			params: []param.Param{param.New("SMTPUTF8")},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			path, params, rest, err := MailCommand([]byte(test.input))
			require.NoError(t, err)
			assert.Empty(t, rest)
			assert.Equal(t, test.path, path)
			assert.Equal(t, test.params, params)
		})
	}
}

func TestMailCommandString(t *testing.T) {
	path, _, _, err := MailCommand([]byte("MAIL FROM:<>\r\n"))
	require.NoError(t, err)
	assert.True(t, path.IsNull())
	assert.Equal(t, "<>", path.String())

	path, _, _, err = MailCommand([]byte("MAIL FROM:<\"mr bob\"@example.com>\r\n"))
	require.NoError(t, err)
	assert.False(t, path.IsNull())
	assert.Equal(t, "<\"mr bob\"@example.com>", path.String())
}

func TestMailCommandInvalid(t *testing.T) {
	for _, input := range []string{
		"MAIL FROM:<pa^^&*(sarobas@example.org>\r\n",
		"MAIL FROM:joe@example.org\r\n",
		"MAIL TO:<joe@example.org>\r\n",
		"MAIL FROM:<joe@example.org\r\n",
		"MAIL FROM:<joe.@example.org>\r\n",
		"MAIL FROM:<joe@-example.org>\r\n",
		"MAIL FROM:<joe@example-.org>\r\n",
		"MAIL FROM:<joe@[300.0.0.1]>\r\n",
		"MAIL FROM:<\"unterminated@example.org>\r\n",
		"MAIL FROM:<joe@example.org> RET=\r\n",
		"RCPT TO:<joe@example.org>\r\n",
		"",
	} {
		_, _, _, err := MailCommand([]byte(input))
		assert.True(t, rfcparser.IsError(err), "input %q", input)
	}
}

func TestMailCommandPartial(t *testing.T) {
	path, params, rest, err := MailCommand([]byte("MAIL FROM:<a@b.example> SIZE=100 =bad\r\n"))
	require.Error(t, err)
	assert.Equal(t, "<a@b.example>", path.String())
	assert.Equal(t, []param.Param{param.NewWithValue("SIZE", "100")}, params)
	assert.Equal(t, " =bad\r\n", string(rest))
	assert.Equal(t, 33, rfcparser.ErrorOffset(err))
}

func TestMailCommandTrailingGarbage(t *testing.T) {
	_, params, rest, err := MailCommand([]byte("MAIL FROM:<a@b.example>junk"))
	require.Error(t, err)
	assert.Empty(t, params)
	assert.Equal(t, "junk", string(rest))
}

func TestMailCommandLegacy(t *testing.T) {
	_, _, _, err := MailCommand([]byte("MAIL FROM:<jöe@example.org>\r\n"), rfcparser.WithBehaviour(rfcparser.Legacy))
	assert.True(t, rfcparser.IsError(err))

	_, _, _, err = MailCommand([]byte("MAIL FROM:<joe@example.org>\r\n"), rfcparser.WithBehaviour(rfcparser.Legacy))
	assert.NoError(t, err)
}

func TestMailCommandInvalidUTF8(t *testing.T) {
	_, _, _, err := MailCommand([]byte("MAIL FROM:<j\xffe@example.org>\r\n"))
	assert.True(t, rfcparser.IsError(err))
}

func TestMailCommandLimits(t *testing.T) {
	local := strings.Repeat("a", 65)

	_, _, _, err := MailCommand([]byte("MAIL FROM:<" + local + "@example.org>\r\n"))
	require.NoError(t, err)

	_, _, _, err = MailCommand([]byte("MAIL FROM:<"+local+"@example.org>\r\n"), rfcparser.WithLimits(limits.RFC5321Limits()))
	require.Error(t, err)
	assert.ErrorIs(t, err, limits.ErrMaxLocalPartLengthReached)
	assert.Equal(t, rfcparser.KindRange, rfcparser.ErrorKind(err))
	assert.Equal(t, 11, rfcparser.ErrorOffset(err))

	domain := strings.Repeat(strings.Repeat("a", 63)+".", 4) + "example"

	_, _, _, err = MailCommand([]byte("MAIL FROM:<joe@"+domain+">\r\n"), rfcparser.WithLimits(limits.RFC5321Limits()))
	require.Error(t, err)
	assert.ErrorIs(t, err, limits.ErrMaxDomainLengthReached)
}

func TestRcptCommand(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		path   ForwardPath
		params []param.Param
	}{
		{
			name:  "parameter",
			input: "RCPT TO:<mrbob?@example.org> ORCPT=rfc822;mrbob+AD@example.org\r\n",
			path: ForwardPath{Path: Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("mrbob?"),
				Domain:    address.Domain("example.org"),
			}}},
			params: []param.Param{param.NewWithValue("ORCPT", "rfc822;mrbob+AD@example.org")},
		},
		{
			name:  "address literal",
			input: "RCPT TO:<bob@[127.0.0.1]>\r\n",
			path: ForwardPath{Path: Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("bob"),
				Domain:    address.Literal(address.IPLiteral(netip.MustParseAddr("127.0.0.1"))),
			}}},
		},
		{
			name:  "IPv6 address literal",
			input: "RCPT TO:<bob@[IPv6:2001:db8::1]>\r\n",
			path: ForwardPath{Path: Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("bob"),
				Domain:    address.Literal(address.IPLiteral(netip.MustParseAddr("2001:db8::1"))),
			}}},
		},
		{
			name:  "tagged address literal",
			input: "RCPT TO:<bob@[x400:cn=bob]>\r\n",
			path: ForwardPath{Path: Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("bob"),
				Domain:    address.Literal(address.TaggedLiteral("x400", "cn=bob")),
			}}},
		},
		{
			name:  "postmaster",
			input: "RCPT TO:<pOstmaster>\r\n",
			path: ForwardPath{
				Path:       Path{Mailbox: address.Mailbox{LocalPart: address.DotAtom("pOstmaster")}},
				Postmaster: true,
			},
		},
		{
			name:  "postmaster with domain",
			input: "RCPT TO:<pOstmaster@Domain.example.org>\r\n",
			path: ForwardPath{
				Path: Path{Mailbox: address.Mailbox{
					LocalPart: address.DotAtom("pOstmaster"),
					Domain:    address.Domain("Domain.example.org"),
				}},
				Postmaster: true,
			},
		},
		{
			name:  "internationalized domain",
			input: "RCPT TO:<joe@bücher.example>\r\n",
			path: ForwardPath{Path: Path{Mailbox: address.Mailbox{
				LocalPart: address.DotAtom("joe"),
				Domain:    address.Domain("bücher.example"),
			}}},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			path, params, rest, err := RcptCommand([]byte(test.input))
			require.NoError(t, err)
			assert.Empty(t, rest)
			assert.Equal(t, test.path, path)
			assert.Equal(t, test.params, params)
		})
	}
}

func TestRcptCommandPostmasterString(t *testing.T) {
	path, _, _, err := RcptCommand([]byte("RCPT TO:<Postmaster>"))
	require.NoError(t, err)
	assert.Equal(t, "<Postmaster>", path.String())
}

func TestRcptCommandInvalid(t *testing.T) {
	for _, input := range []string{
		"RCPT TO:<>\r\n",
		"RCPT TO:<pa^^&*(sarobas@example.org>\r\n",
		"RCPT TO:<\"postmaster\">\r\n",
		"RCPT FROM:<joe@example.org>\r\n",
	} {
		_, _, _, err := RcptCommand([]byte(input))
		assert.True(t, rfcparser.IsError(err), "input %q", input)
	}
}

func TestRcptCommandIDNA(t *testing.T) {
	path, _, _, err := RcptCommand([]byte("RCPT TO:<joe@bücher.example>\r\n"))
	require.NoError(t, err)

	ascii, err := path.Path.Mailbox.Domain.ASCII()
	require.NoError(t, err)
	assert.Equal(t, "xn--bcher-kva.example", ascii)
}

func TestCommand(t *testing.T) {
	tests := []struct {
		input string
		verb  string
		want  Payload
	}{
		{input: "EHLO mail.example.org\r\n", verb: "EHLO", want: &Ehlo{Domain: address.Domain("mail.example.org")}},
		{input: "ehlo [192.0.2.1]\r\n", verb: "EHLO", want: &Ehlo{Domain: address.Literal(address.IPLiteral(netip.MustParseAddr("192.0.2.1")))}},
		{input: "HELO mail.example.org\r\n", verb: "HELO", want: &Helo{Domain: "mail.example.org"}},
		{input: "DATA\r\n", verb: "DATA", want: &Data{}},
		{input: "RSET\r\n", verb: "RSET", want: &Rset{}},
		{input: "VRFY \"John Smith\"\r\n", verb: "VRFY", want: &Vrfy{Arg: "John Smith"}},
		{input: "EXPN staff\r\n", verb: "EXPN", want: &Expn{Arg: "staff"}},
		{input: "HELP\r\n", verb: "HELP", want: &Help{}},
		{input: "HELP mail\r\n", verb: "HELP", want: &Help{Topic: "mail"}},
		{input: "NOOP\r\n", verb: "NOOP", want: &Noop{}},
		{input: "NOOP ping\r\n", verb: "NOOP", want: &Noop{Arg: "ping"}},
		{input: "QUIT\r\n", verb: "QUIT", want: &Quit{}},
		{input: "StartTLS\r\n", verb: "STARTTLS", want: &StartTLS{}},
		{input: "BDAT 1000\r\n", verb: "BDAT", want: &Bdat{Size: 1000}},
		{input: "BDAT 0 LAST\r\n", verb: "BDAT", want: &Bdat{Size: 0, Last: true}},
		{
			input: "MAIL FROM:<joe@example.org> SIZE=10\r\n",
			verb:  "MAIL",
			want: &Mail{
				From: ReversePath{Path: &Path{Mailbox: address.Mailbox{
					LocalPart: address.DotAtom("joe"),
					Domain:    address.Domain("example.org"),
				}}},
				Params: []param.Param{param.NewWithValue("SIZE", "10")},
			},
		},
		{
			input: "RCPT TO:<joe@example.org>\r\n",
			verb:  "RCPT",
			want: &Rcpt{
				To: ForwardPath{Path: Path{Mailbox: address.Mailbox{
					LocalPart: address.DotAtom("joe"),
					Domain:    address.Domain("example.org"),
				}}},
			},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.input, func(t *testing.T) {
			cmd, rest, err := Command([]byte(test.input))
			require.NoError(t, err)
			assert.Empty(t, rest)
			assert.Equal(t, test.verb, cmd.Verb)
			assert.Equal(t, test.want, cmd.Payload)
		})
	}
}

func TestCommandString(t *testing.T) {
	for input, want := range map[string]string{
		"ehlo mail.example.org":                     "EHLO mail.example.org",
		"MAIL FROM:<joe@example.org> BODY=8BITMIME": "MAIL FROM:<joe@example.org> BODY=8BITMIME",
		"RCPT TO:<postmaster>":                      "RCPT TO:<postmaster>",
		"bdat 12 last":                              "BDAT 12 LAST",
		"vrfy joe":                                  "VRFY joe",
	} {
		cmd, _, err := Command([]byte(input))
		require.NoError(t, err, input)
		assert.Equal(t, want, cmd.String())
	}
}

func TestCommandPipelining(t *testing.T) {
	input := []byte("MAIL FROM:<a@example.org>\r\nRCPT TO:<b@example.org>\r\nRCPT TO:<c@example.org>\r\nDATA\r\n")

	var verbs []string

	for len(input) > 0 {
		cmd, rest, err := Command(input)
		require.NoError(t, err)

		verbs = append(verbs, cmd.Verb)
		input = rest
	}

	assert.Equal(t, []string{"MAIL", "RCPT", "RCPT", "DATA"}, verbs)
}

func TestCommandInvalid(t *testing.T) {
	for _, input := range []string{
		"",
		"FOO\r\n",
		"DATA now\r\n",
		"EHLO\r\n",
		"EHLO [256.1.1.1]\r\n",
		"HELO [192.0.2.1]\r\n",
		"VRFY\r\n",
		"BDAT\r\n",
		"BDAT 99999999999999999999\r\n",
		"BDAT 10 FIRST\r\n",
		"QUIT\n",
	} {
		_, rest, err := Command([]byte(input))
		assert.True(t, rfcparser.IsError(err), "input %q", input)
		assert.Equal(t, input, string(rest))
	}
}

func TestCommandChunkSizeRange(t *testing.T) {
	_, _, err := Command([]byte("BDAT 99999999999999999999\r\n"))
	assert.Equal(t, rfcparser.KindRange, rfcparser.ErrorKind(err))
}

func TestEsmtpParams(t *testing.T) {
	params, rest, err := EsmtpParams([]byte("RET=full envid=abc123 SMTPUTF8\r\n"))
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, []param.Param{
		param.NewWithValue("RET", "full"),
		param.NewWithValue("envid", "abc123"),
		param.New("SMTPUTF8"),
	}, params)

	assert.True(t, param.List(params).Has("ret"))

	_, _, err = EsmtpParams([]byte("=abc"))
	assert.True(t, rfcparser.IsError(err))

	_, _, err = EsmtpParams([]byte("-KEY=abc"))
	assert.True(t, rfcparser.IsError(err))
}

func TestParseMailbox(t *testing.T) {
	mailbox, rest, err := ParseMailbox([]byte("joe@example.org> rest"))
	require.NoError(t, err)
	assert.Equal(t, "joe@example.org", mailbox.String())
	assert.Equal(t, "> rest", string(rest))
}

func TestValidateAddress(t *testing.T) {
	assert.True(t, ValidateAddress([]byte("mrbob@example.org")))
	assert.True(t, ValidateAddress([]byte("\"mr bob\"@example.org")))
	assert.True(t, ValidateAddress([]byte("bob@[IPv6:::1]")))
	assert.False(t, ValidateAddress([]byte("mrbob\"@example.org")))
	assert.False(t, ValidateAddress([]byte("mrbob@example.org ")))
	assert.False(t, ValidateAddress([]byte("mrbob")))
	assert.False(t, ValidateAddress([]byte("jöe@example.org"), rfcparser.WithBehaviour(rfcparser.Legacy)))
}

func TestTerseDiagnostics(t *testing.T) {
	_, _, _, err := MailCommand([]byte("MAIL FROM:<joe>\r\n"), rfcparser.WithDiagnostics(rfcparser.Terse))
	require.Error(t, err)
	assert.Equal(t, "[Error offset=14]: syntax error", err.Error())
}

func FuzzMailCommand(f *testing.F) {
	f.Add([]byte("MAIL FROM:<\"mr bob\"@example.com> RET=FULL ENVID=abc123\r\n"))
	f.Add([]byte("MAIL FROM:<@a.example,@b.example:joe@c.example>\r\n"))
	f.Add([]byte("MAIL FROM:<>\r\n"))

	f.Fuzz(func(t *testing.T, input []byte) {
		_, _, rest, _ := MailCommand(input)
		if len(rest) > len(input) {
			t.Fatalf("remaining input longer than input")
		}
	})
}

func FuzzCommand(f *testing.F) {
	f.Add([]byte("RCPT TO:<bob@[IPv6:2001:db8::1]> NOTIFY=NEVER\r\n"))
	f.Add([]byte("EHLO bücher.example\r\n"))
	f.Add([]byte("BDAT 100 LAST\r\n"))

	f.Fuzz(func(t *testing.T, input []byte) {
		_, rest, _ := Command(input)
		if len(rest) > len(input) {
			t.Fatalf("remaining input longer than input")
		}
	})
}

func FuzzRcptCommand(f *testing.F) {
	f.Add([]byte("RCPT TO:<Postmaster>\r\n"))
	f.Add([]byte("RCPT TO:<bob@[IPv6:2001:db8::1]> NOTIFY=SUCCESS,FAILURE ORCPT=rfc822;bob@example.org\r\n"))
	f.Add([]byte("RCPT TO:<j\xc3\xb6e@b\xc3\xbccher.example>\r\n"))
	f.Add([]byte("RCPT TO:<\xff@x>"))

	f.Fuzz(func(t *testing.T, input []byte) {
		_, _, rest, _ := RcptCommand(input)
		if len(rest) > len(input) {
			t.Fatalf("remaining input longer than input")
		}
	})
}

func FuzzEsmtpParams(f *testing.F) {
	f.Add([]byte(" RET=FULL ENVID=abc123\r\n"))
	f.Add([]byte("SIZE=100 BODY=8BITMIME SMTPUTF8"))
	f.Add([]byte(" =bad\r\n"))
	f.Add([]byte("X-\xff=\x80"))

	f.Fuzz(func(t *testing.T, input []byte) {
		_, rest, _ := EsmtpParams(input)
		if len(rest) > len(input) {
			t.Fatalf("remaining input longer than input")
		}
	})
}
