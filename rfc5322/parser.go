// Package rfc5322 decodes the structured header fields of the Internet Message Format: mailboxes, groups and
// address lists with their obsolete forms, and unstructured text. Display names and unstructured text have their
// RFC 2047 encoded words decoded.
//
// Every entry point takes the field value without the field name. The value must be followed by the end of the
// input or by the CRLF that terminates the field; the input remaining after that CRLF is returned.
package rfc5322

import (
	"bytes"
	"strings"

	"github.com/ProtonMail/mailgrammar/address"
	"github.com/ProtonMail/mailgrammar/rfc2047"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/sirupsen/logrus"
)

// Address is either a Mailbox or a Group.
type Address interface {
	String() string

	isAddress()
}

// Mailbox is an address with an optional display name.
type Mailbox struct {
	DisplayName string
	Address     address.Mailbox
}

func (m Mailbox) String() string {
	if m.DisplayName == "" {
		return m.Address.String()
	}

	return address.Quote(m.DisplayName) + " <" + m.Address.String() + ">"
}

func (Mailbox) isAddress() {}

// Group is a named list of mailboxes. The list may be empty.
type Group struct {
	DisplayName string
	Members     []Mailbox
}

func (g Group) String() string {
	members := make([]string, 0, len(g.Members))

	for _, m := range g.Members {
		members = append(members, m.String())
	}

	return address.Quote(g.DisplayName) + ":" + strings.Join(members, ", ") + ";"
}

func (Group) isAddress() {}

// Mailboxes returns every mailbox of addrs, with groups replaced by their members.
func Mailboxes(addrs []Address) []Mailbox {
	var result []Mailbox

	for _, addr := range addrs {
		switch addr := addr.(type) {
		case Mailbox:
			result = append(result, addr)

		case Group:
			result = append(result, addr.Members...)
		}
	}

	return result
}

// From parses the value of a From field. RFC 6854 allows it to hold groups.
func From(b []byte, opts ...rfcparser.Option) ([]Address, []byte, error) {
	return AddressList(b, opts...)
}

func ReplyTo(b []byte, opts ...rfcparser.Option) ([]Address, []byte, error) {
	return AddressList(b, opts...)
}

func To(b []byte, opts ...rfcparser.Option) ([]Address, []byte, error) {
	return AddressList(b, opts...)
}

func Cc(b []byte, opts ...rfcparser.Option) ([]Address, []byte, error) {
	return AddressList(b, opts...)
}

func Bcc(b []byte, opts ...rfcparser.Option) ([]Address, []byte, error) {
	return AddressList(b, opts...)
}

// AddressList parses a comma separated list of mailboxes and groups. On failure the addresses that were parsed
// before the failing element are returned together with the input starting at that element.
func AddressList(b []byte, opts ...rfcparser.Option) ([]Address, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	addrs, next, err := parseAddressList(c)
	if err == nil {
		next, err = consumeFieldEnd(next)
	}

	if err != nil {
		logrus.WithError(err).WithField("parsed", len(addrs)).Debug("Returning partial address list")

		return addrs, next.Rest(), c.Config().Diagnose(err)
	}

	return addrs, next.Rest(), nil
}

// Sender parses the value of a Sender field, which holds a single address.
func Sender(b []byte, opts ...rfcparser.Option) (Address, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	addr, next, err := parseAddress(c)
	if err != nil {
		return nil, b, c.Config().Diagnose(err)
	}

	if next, err = consumeFieldEnd(next); err != nil {
		return addr, next.Rest(), c.Config().Diagnose(err)
	}

	return addr, next.Rest(), nil
}

// Unstructured parses the value of an unstructured field such as Subject. Folds are removed, encoded words are
// decoded and the surrounding white space is trimmed. On failure the text decoded so far is returned with the
// whole input.
func Unstructured(b []byte, opts ...rfcparser.Option) (string, []byte, error) {
	//   unstructured    =   (*([FWS] VCHAR) *WSP) / obs-unstruct
	cfg := rfcparser.NewConfig(opts...)

	value, rest := splitField(b)

	text, err := rfc2047.Text(cfg, value)
	text = strings.Trim(text, " \t")

	if err != nil {
		return text, b, cfg.Diagnose(err)
	}

	return text, rest, nil
}

// splitField splits b at the first CRLF that is not followed by white space.
func splitField(b []byte) ([]byte, []byte) {
	offset := 0

	for {
		idx := bytes.Index(b[offset:], []byte("\r\n"))
		if idx < 0 {
			return b, b[len(b):]
		}

		end := offset + idx

		if end+2 >= len(b) || (b[end+2] != ' ' && b[end+2] != '\t') {
			return b[:end], b[end+2:]
		}

		offset = end + 2
	}
}

func consumeFieldEnd(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	if c.AtEOF() {
		return c, nil
	}

	next, err := c.ConsumeNewLine()
	if err != nil {
		return c, c.MakeError("expected end of field")
	}

	return next, nil
}
