package rfc5321

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ProtonMail/mailgrammar/address"
	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

type Payload interface {
	String() string
}

// Cmd is a parsed command line. Verb is upper case.
type Cmd struct {
	Verb    string
	Payload Payload
}

func (c Cmd) String() string {
	return c.Payload.String()
}

type Ehlo struct {
	Domain address.DomainPart
}

func (e Ehlo) String() string {
	return "EHLO " + e.Domain.String()
}

type Helo struct {
	Domain string
}

func (h Helo) String() string {
	return "HELO " + h.Domain
}

type Mail struct {
	From   ReversePath
	Params []param.Param
}

func (m Mail) String() string {
	return "MAIL FROM:" + m.From.String() + paramsString(m.Params)
}

type Rcpt struct {
	To     ForwardPath
	Params []param.Param
}

func (r Rcpt) String() string {
	return "RCPT TO:" + r.To.String() + paramsString(r.Params)
}

func paramsString(params []param.Param) string {
	var b strings.Builder

	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}

	return b.String()
}

type Data struct{}

func (Data) String() string {
	return "DATA"
}

type Rset struct{}

func (Rset) String() string {
	return "RSET"
}

type Vrfy struct {
	Arg string
}

func (v Vrfy) String() string {
	return "VRFY " + v.Arg
}

type Expn struct {
	Arg string
}

func (e Expn) String() string {
	return "EXPN " + e.Arg
}

type Help struct {
	Topic string
}

func (h Help) String() string {
	if h.Topic == "" {
		return "HELP"
	}

	return "HELP " + h.Topic
}

type Noop struct {
	Arg string
}

func (n Noop) String() string {
	if n.Arg == "" {
		return "NOOP"
	}

	return "NOOP " + n.Arg
}

type Quit struct{}

func (Quit) String() string {
	return "QUIT"
}

type StartTLS struct{}

func (StartTLS) String() string {
	return "STARTTLS"
}

// Bdat is a chunk announcement of the CHUNKING extension (RFC 3030).
type Bdat struct {
	Size int64
	Last bool
}

func (b Bdat) String() string {
	if b.Last {
		return fmt.Sprintf("BDAT %v LAST", b.Size)
	}

	return fmt.Sprintf("BDAT %v", b.Size)
}

// builder parses the arguments following a verb, up to the end of the line.
type builder func(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error)

var builders = map[string]builder{
	"ehlo":     parseEhlo,
	"helo":     parseHelo,
	"mail":     parseMail,
	"rcpt":     parseRcpt,
	"data":     noArgs(&Data{}),
	"rset":     noArgs(&Rset{}),
	"vrfy":     parseVrfy,
	"expn":     parseExpn,
	"help":     parseHelp,
	"noop":     parseNoop,
	"quit":     noArgs(&Quit{}),
	"starttls": noArgs(&StartTLS{}),
	"bdat":     parseBdat,
}

func parseCommand(c rfcparser.Cursor) (Cmd, rfcparser.Cursor, error) {
	verb, next := c.CollectBytesWhile(rfcparser.IsAlphaByte)
	if len(verb) == 0 {
		return Cmd{}, c, c.MakeError("expected command verb")
	}

	build, ok := builders[strings.ToLower(string(verb))]
	if !ok {
		return Cmd{}, c, c.MakeError(fmt.Sprintf("unknown command '%s'", verb))
	}

	payload, next, err := build(next)
	if err != nil {
		return Cmd{}, c, err
	}

	return Cmd{Verb: strings.ToUpper(string(verb)), Payload: payload}, next, nil
}

func noArgs(payload Payload) builder {
	return func(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
		return payload, c, nil
	}
}

func parseEhlo(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	ehlo           = "EHLO" SP ( Domain / address-literal ) CRLF
	next, err := c.Consume(rfcparser.TokenTypeSP, "expected space after command")
	if err != nil {
		return nil, c, err
	}

	domain, next, err := parseDomainPart(next)
	if err != nil {
		return nil, c, err
	}

	return &Ehlo{Domain: domain}, next, nil
}

func parseHelo(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	helo           = "HELO" SP Domain CRLF
	next, err := c.Consume(rfcparser.TokenTypeSP, "expected space after command")
	if err != nil {
		return nil, c, err
	}

	domain, next, err := parseDomain(next)
	if err != nil {
		return nil, c, err
	}

	return &Helo{Domain: domain}, next, nil
}

func parseMail(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	mail           = "MAIL FROM:" Reverse-path [SP Mail-parameters] CRLF
	next, err := consumeArgumentPrefix(c, " FROM:")
	if err != nil {
		return nil, c, err
	}

	path, next, err := parseReversePath(next)
	if err != nil {
		return nil, c, err
	}

	params, next, err := parseParams(next)
	if err != nil {
		return &Mail{From: path, Params: params}, next, err
	}

	return &Mail{From: path, Params: params}, next, nil
}

func parseRcpt(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	rcpt           = "RCPT TO:" ( "<Postmaster@" Domain ">" / "<Postmaster>" /
	//	                 Forward-path ) [SP Rcpt-parameters] CRLF
	next, err := consumeArgumentPrefix(c, " TO:")
	if err != nil {
		return nil, c, err
	}

	path, next, err := parseForwardPath(next)
	if err != nil {
		return nil, c, err
	}

	params, next, err := parseParams(next)
	if err != nil {
		return &Rcpt{To: path, Params: params}, next, err
	}

	return &Rcpt{To: path, Params: params}, next, nil
}

// consumeArgumentPrefix consumes prefix, ignoring case, and a single space after it. The space is not allowed by
// RFC 5321 but is sent by enough clients to be accepted.
func consumeArgumentPrefix(c rfcparser.Cursor, prefix string) (rfcparser.Cursor, error) {
	next, err := c.ConsumeBytesFold([]byte(prefix)...)
	if err != nil {
		return c, err
	}

	if after, ok := next.Matches(rfcparser.TokenTypeSP); ok {
		next = after
	}

	return next, nil
}

func parseStringArgument(c rfcparser.Cursor, optional bool) (string, rfcparser.Cursor, error) {
	if optional && isLineEnd(rfcparser.SkipWSP(c)) {
		return "", c, nil
	}

	next, err := c.Consume(rfcparser.TokenTypeSP, "expected space after command")
	if err != nil {
		return "", c, err
	}

	value, next, err := parseString(next)
	if err != nil {
		return "", c, err
	}

	return value, next, nil
}

func parseVrfy(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	vrfy           = "VRFY" SP String CRLF
	value, next, err := parseStringArgument(c, false)
	if err != nil {
		return nil, c, err
	}

	return &Vrfy{Arg: value}, next, nil
}

func parseExpn(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	expn           = "EXPN" SP String CRLF
	value, next, err := parseStringArgument(c, false)
	if err != nil {
		return nil, c, err
	}

	return &Expn{Arg: value}, next, nil
}

func parseHelp(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	help           = "HELP" [ SP String ] CRLF
	value, next, err := parseStringArgument(c, true)
	if err != nil {
		return nil, c, err
	}

	return &Help{Topic: value}, next, nil
}

func parseNoop(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	noop           = "NOOP" [ SP String ] CRLF
	value, next, err := parseStringArgument(c, true)
	if err != nil {
		return nil, c, err
	}

	return &Noop{Arg: value}, next, nil
}

func parseBdat(c rfcparser.Cursor) (Payload, rfcparser.Cursor, error) {
	//	bdat-cmd   ::= "BDAT" SP chunk-size [ SP end-marker ] CR LF
	//	chunk-size ::= 1*DIGIT
	//	end-marker ::= "LAST"
	next, err := c.Consume(rfcparser.TokenTypeSP, "expected space after command")
	if err != nil {
		return nil, c, err
	}

	digits, afterSize, err := rfcparser.TakeWhile(rfcparser.IsDigitByte, 1, "chunk size")(next)
	if err != nil {
		return nil, c, err
	}

	size, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return nil, c, next.MakeErrorKind(rfcparser.KindRange, "chunk size out of range")
	}

	result := &Bdat{Size: size}

	if after, ok := afterSize.MatchesFold(" last"); ok {
		result.Last = true
		afterSize = after
	}

	return result, afterSize, nil
}
