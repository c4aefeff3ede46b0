package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfc2231"
	"github.com/ProtonMail/mailgrammar/rfc3461"
	"github.com/ProtonMail/mailgrammar/rfc5321"
	"github.com/ProtonMail/mailgrammar/rfc5322"
	"github.com/ProtonMail/mailgrammar/rfc822"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/ProtonMail/mailgrammar/xforward"
	"github.com/bradenaw/juniper/xslices"
	"github.com/emersion/go-mbox"
	"github.com/sirupsen/logrus"
)

// decoder turns a raw header field value into printable text.
type decoder func(value []byte, opts []rfcparser.Option) (string, error)

var decoders = map[string]decoder{
	"from":                      addressList(rfc5322.From),
	"reply-to":                  addressList(rfc5322.ReplyTo),
	"to":                        addressList(rfc5322.To),
	"cc":                        addressList(rfc5322.Cc),
	"bcc":                       addressList(rfc5322.Bcc),
	"sender":                    decodeSender,
	"subject":                   decodeUnstructured,
	"comments":                  decodeUnstructured,
	"date":                      decodeDate,
	"content-type":              decodeContentType,
	"content-disposition":       decodeContentDisposition,
	"content-transfer-encoding": decodeContentTransferEncoding,
}

func addressList(fn func([]byte, ...rfcparser.Option) ([]rfc5322.Address, []byte, error)) decoder {
	return func(value []byte, opts []rfcparser.Option) (string, error) {
		addrs, _, err := fn(value, opts...)
		if err != nil {
			return "", err
		}

		return joinStrings(addrs, ", "), nil
	}
}

func decodeSender(value []byte, opts []rfcparser.Option) (string, error) {
	addr, _, err := rfc5322.Sender(value, opts...)
	if err != nil {
		return "", err
	}

	return addr.String(), nil
}

func decodeUnstructured(value []byte, opts []rfcparser.Option) (string, error) {
	text, _, err := rfc5322.Unstructured(value, opts...)
	if err != nil {
		return "", err
	}

	return text, nil
}

func decodeDate(value []byte, opts []rfcparser.Option) (string, error) {
	date, _, err := rfc5322.Date(value, opts...)
	if err != nil {
		return "", err
	}

	return date.Format(time.RFC1123Z), nil
}

func decodeContentType(value []byte, opts []rfcparser.Option) (string, error) {
	mediaType, params, _, err := rfc2231.ContentType(value, opts...)
	if err != nil {
		return "", err
	}

	return mediaType + formatMIMEParams(params), nil
}

func decodeContentDisposition(value []byte, opts []rfcparser.Option) (string, error) {
	disposition, params, _, err := rfc2231.ContentDisposition(value, opts...)
	if err != nil {
		return "", err
	}

	return string(disposition) + formatMIMEParams(params), nil
}

func decodeContentTransferEncoding(value []byte, opts []rfcparser.Option) (string, error) {
	encoding, _, err := rfc2231.ContentTransferEncoding(value, opts...)
	if err != nil {
		return "", err
	}

	return string(encoding), nil
}

func formatMIMEParams(params []param.Param) string {
	var b strings.Builder

	for _, p := range params {
		fmt.Fprintf(&b, "; %v=%q", p.Key, p.Value)
	}

	return b.String()
}

// decodeArgs decodes every argument as a value of the given field, or standard input when there are no arguments.
func decodeArgs(w io.Writer, stdin io.Reader, field string, args []string, opts []rfcparser.Option) error {
	dec, ok := decoders[strings.ToLower(field)]
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}

	values := xslices.Map(args, func(arg string) []byte { return []byte(arg) })

	if len(values) == 0 {
		value, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}

		values = [][]byte{value}
	}

	var failed bool

	for _, value := range values {
		text, err := dec(value, opts)
		if err != nil {
			logrus.WithError(err).WithField("value", string(value)).Warn("Failed to decode value")

			failed = true

			continue
		}

		fmt.Fprintln(w, text)
	}

	if failed {
		return errors.New("some values could not be decoded")
	}

	return nil
}

func decodeMBoxFile(w io.Writer, path string, opts []rfcparser.Option) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close()

	return decodeMBox(w, f, opts)
}

// decodeMBox prints the decoded header fields of every message. Fields that fail to decode are logged and skipped.
func decodeMBox(w io.Writer, r io.Reader, opts []rfcparser.Option) error {
	mr := mbox.NewReader(r)

	for n := 1; ; n++ {
		msg, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		literal, err := io.ReadAll(msg)
		if err != nil {
			return err
		}

		fields, _ := rfc822.HeaderSection(toCRLF(literal))

		fmt.Fprintf(w, "Message %v\n", n)

		for _, field := range fields {
			if !field.Valid() {
				logrus.WithField("message", n).WithField("line", string(field.Value)).Debug("Skipping malformed header line")
				continue
			}

			dec, ok := decoders[strings.ToLower(string(field.Name))]
			if !ok {
				continue
			}

			text, err := dec(field.Value, opts)
			if err != nil {
				logrus.WithError(err).WithField("message", n).WithField("field", string(field.Name)).Warn("Failed to decode field")
				continue
			}

			fmt.Fprintf(w, "  %s: %s\n", field.Name, text)
		}
	}
}

// toCRLF converts the LF line endings of an mbox file to the CRLF line endings of the message format.
func toCRLF(b []byte) []byte {
	return bytes.ReplaceAll(bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n")), []byte("\n"), []byte("\r\n"))
}

// decodeCommands prints every SMTP command line read from r. Lines that fail to decode are reported in the output.
func decodeCommands(w io.Writer, r io.Reader, opts []rfcparser.Option) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		text, err := decodeCommand(line, opts)
		if err != nil {
			logrus.WithError(err).WithField("line", string(line)).Debug("Invalid command line")
			fmt.Fprintf(w, "error: %v\n", err)

			continue
		}

		fmt.Fprintln(w, text)
	}

	return scanner.Err()
}

func decodeCommand(line []byte, opts []rfcparser.Option) (string, error) {
	const xforwardVerb = "XFORWARD "

	if len(line) >= len(xforwardVerb) && bytes.EqualFold(line[:len(xforwardVerb)], []byte(xforwardVerb)) {
		params, _, err := xforward.Params(line[len(xforwardVerb):], opts...)
		if err != nil {
			return "", err
		}

		return "XFORWARD " + joinStrings(params, " "), nil
	}

	cmd, _, err := rfc5321.Command(line, opts...)
	if err != nil {
		return "", err
	}

	switch payload := cmd.Payload.(type) {
	case *rfc5321.Mail:
		dsn, others, err := rfc3461.DSNMailParams(payload.Params, opts...)
		if err != nil {
			return "", err
		}

		text := "MAIL " + payload.From.String()

		if dsn.Ret != rfc3461.RetUnspecified {
			text += " ret=" + dsn.Ret.String()
		}

		if dsn.EnvID != "" {
			text += fmt.Sprintf(" envid=%q", dsn.EnvID)
		}

		return text + formatESMTPParams(others), nil

	case *rfc5321.Rcpt:
		dsn, others, err := rfc3461.DSNRcptParams(payload.Params, opts...)
		if err != nil {
			return "", err
		}

		text := "RCPT " + payload.To.String()

		if payload.To.Postmaster {
			text += " postmaster"
		}

		if dsn.Notify != nil {
			text += " notify=" + joinStrings(dsn.Notify, ",")
		}

		if dsn.Orcpt != nil {
			text += fmt.Sprintf(" orcpt=%v;%q", dsn.Orcpt.AddrType, dsn.Orcpt.Addr)
		}

		return text + formatESMTPParams(others), nil

	default:
		return cmd.String(), nil
	}
}

func formatESMTPParams(params []param.Param) string {
	if len(params) == 0 {
		return ""
	}

	return " " + joinStrings(params, " ")
}
