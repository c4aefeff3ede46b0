package rfc5322

import (
	"errors"
	"fmt"

	"github.com/ProtonMail/mailgrammar/rfc822"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

var ErrInvalidMessage = errors.New("invalid rfc5322 message")

// ValidateMessageHeaderFields checks the headers of message to verify that:
// * From and Date are present and well formed.
// * If From has multiple mailboxes, a Sender field must be present.
// * If Both From and Sender are present and they contain one mailbox, they must not be equal.
func ValidateMessageHeaderFields(literal []byte, opts ...rfcparser.Option) error {
	headerBytes, _ := rfc822.Split(literal)

	header := rfc822.ParseHeader(headerBytes)

	// Check for date.
	date := header.GetRaw("Date")
	if len(date) == 0 {
		return fmt.Errorf("%w: Required header field 'Date' not found or empty", ErrInvalidMessage)
	}

	if _, _, err := Date(date, opts...); err != nil {
		return fmt.Errorf("%w: failed to parse Date header: %v", ErrInvalidMessage, err)
	}

	// Check for from.
	value := header.GetRaw("From")
	if len(value) == 0 {
		return fmt.Errorf("%w: Required header field 'From' not found or empty", ErrInvalidMessage)
	}

	addresses, _, err := From(value, opts...)
	if err != nil {
		return fmt.Errorf("%w: failed to parse From header: %v", ErrInvalidMessage, err)
	}

	from := Mailboxes(addresses)

	// If From holds multiple mailboxes, a Sender field must be present and non-empty.
	if len(from) > 1 {
		senderValue := header.GetRaw("Sender")
		if len(senderValue) == 0 {
			return fmt.Errorf("%w: Required header field 'Sender' not found or empty", ErrInvalidMessage)
		}

		if _, _, err := Sender(senderValue, opts...); err != nil {
			return fmt.Errorf("%w: failed to parse Sender header: %v", ErrInvalidMessage, err)
		}

		return nil
	}

	if !header.Has("Sender") {
		return nil
	}

	senderValue := header.GetRaw("Sender")
	if len(senderValue) == 0 {
		return fmt.Errorf("%w: Required header field 'Sender' should not be empty", ErrInvalidMessage)
	}

	sender, _, err := Sender(senderValue, opts...)
	if err != nil {
		return fmt.Errorf("%w: failed to parse Sender header: %v", ErrInvalidMessage, err)
	}

	if senderMailboxes := Mailboxes([]Address{sender}); len(senderMailboxes) == 1 && len(from) == 1 &&
		senderMailboxes[0].Address.String() == from[0].Address.String() {
		return fmt.Errorf("%w: `Sender` should not be present if equal to `From`", ErrInvalidMessage)
	}

	return nil
}

// ValidateMessageHeaderFieldsDrafts checks the headers of message to verify that at least a valid From header is
// present.
func ValidateMessageHeaderFieldsDrafts(literal []byte, opts ...rfcparser.Option) error {
	headerBytes, _ := rfc822.Split(literal)

	header := rfc822.ParseHeader(headerBytes)

	value := header.GetRaw("From")
	if len(value) == 0 {
		return fmt.Errorf("%w: Required header field 'From' not found or empty", ErrInvalidMessage)
	}

	if _, _, err := From(value, opts...); err != nil {
		return fmt.Errorf("%w: failed to parse From header: %v", ErrInvalidMessage, err)
	}

	return nil
}
