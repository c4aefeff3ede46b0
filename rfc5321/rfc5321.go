// Package rfc5321 decodes SMTP command lines as defined by RFC 5321: envelope paths, mailboxes and ESMTP parameter
// lists. In the default Intl behaviour UTF-8 is accepted in mailboxes and parameter values (RFC 6531); Legacy
// behaviour restricts them to US-ASCII.
//
// Command lines may end with a CRLF or with the end of the input. The input remaining after the CRLF is returned so
// that pipelined commands can be decoded one after the other.
package rfc5321

import (
	"github.com/ProtonMail/mailgrammar/address"
	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

// MailCommand decodes a MAIL command line. On a parameter failure the reverse path and the parameters before the
// failing one are returned with the input starting at the space that precedes it.
func MailCommand(b []byte, opts ...rfcparser.Option) (ReversePath, []param.Param, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	next, err := c.ConsumeBytesFold('M', 'A', 'I', 'L')
	if err != nil {
		return ReversePath{}, nil, b, c.Config().Diagnose(err)
	}

	payload, next, err := parseMail(next)
	if payload == nil {
		return ReversePath{}, nil, b, c.Config().Diagnose(err)
	}

	mail := payload.(*Mail)

	if err != nil {
		return mail.From, mail.Params, next.Rest(), c.Config().Diagnose(err)
	}

	end, err := consumeLineEnd(next)
	if err != nil {
		return mail.From, mail.Params, next.Rest(), c.Config().Diagnose(err)
	}

	return mail.From, mail.Params, end.Rest(), nil
}

// RcptCommand decodes a RCPT command line. Partial results are returned as for MailCommand.
func RcptCommand(b []byte, opts ...rfcparser.Option) (ForwardPath, []param.Param, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	next, err := c.ConsumeBytesFold('R', 'C', 'P', 'T')
	if err != nil {
		return ForwardPath{}, nil, b, c.Config().Diagnose(err)
	}

	payload, next, err := parseRcpt(next)
	if payload == nil {
		return ForwardPath{}, nil, b, c.Config().Diagnose(err)
	}

	rcpt := payload.(*Rcpt)

	if err != nil {
		return rcpt.To, rcpt.Params, next.Rest(), c.Config().Diagnose(err)
	}

	end, err := consumeLineEnd(next)
	if err != nil {
		return rcpt.To, rcpt.Params, next.Rest(), c.Config().Diagnose(err)
	}

	return rcpt.To, rcpt.Params, end.Rest(), nil
}

// Command decodes any command line of the RFC 5321 command set, as well as STARTTLS (RFC 3207) and BDAT (RFC 3030).
func Command(b []byte, opts ...rfcparser.Option) (Cmd, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	cmd, next, err := parseCommand(c)
	if err != nil {
		return Cmd{}, b, c.Config().Diagnose(err)
	}

	end, err := consumeLineEnd(next)
	if err != nil {
		return Cmd{}, b, c.Config().Diagnose(err)
	}

	return cmd, end.Rest(), nil
}

// EsmtpParams decodes a space separated list of ESMTP parameters, such as the ones following the path of a MAIL or
// RCPT command. At least one parameter is required.
func EsmtpParams(b []byte, opts ...rfcparser.Option) ([]param.Param, []byte, error) {
	//	Mail-parameters  = esmtp-param *(SP esmtp-param)
	c := rfcparser.NewCursor(b, opts...)

	first, next, err := parseParam(c)
	if err != nil {
		return nil, b, c.Config().Diagnose(err)
	}

	rest, next, err := parseParams(next)

	params := append([]param.Param{first}, rest...)

	if err != nil {
		return params, next.Rest(), c.Config().Diagnose(err)
	}

	end, err := consumeLineEnd(next)
	if err != nil {
		return params, next.Rest(), c.Config().Diagnose(err)
	}

	return params, end.Rest(), nil
}

// ParseMailbox decodes an SMTP mailbox, without angle brackets, at the start of b.
func ParseMailbox(b []byte, opts ...rfcparser.Option) (address.Mailbox, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	mailbox, next, err := parseMailbox(c)
	if err != nil {
		return address.Mailbox{}, b, c.Config().Diagnose(err)
	}

	return mailbox, next.Rest(), nil
}

// ValidateAddress reports whether b is exactly one SMTP mailbox.
func ValidateAddress(b []byte, opts ...rfcparser.Option) bool {
	_, rest, err := ParseMailbox(b, opts...)

	return err == nil && len(rest) == 0
}
