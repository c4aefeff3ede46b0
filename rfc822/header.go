// Package rfc822 splits a message into its header fields and body without interpreting the field values. It is
// tolerant of the damage found in real mailboxes: lines that are not fields, lone CR or LF bytes and 8-bit bytes are
// kept rather than rejected, so the structured decoders can be applied to the fields that survive.
package rfc822

import (
	"bytes"
	"strings"

	"github.com/bradenaw/juniper/xslices"
)

// Field is a single header field. The slices alias the parsed input.
type Field struct {
	// Name is nil when the line is not a well formed field.
	Name []byte

	// Value is the raw field body following the colon, with its folds. For a malformed line it holds the whole line.
	Value []byte
}

func (f Field) Valid() bool {
	return f.Name != nil
}

// Is reports whether the field has the given name, ignoring case.
func (f Field) Is(name string) bool {
	return f.Valid() && strings.EqualFold(string(f.Name), name)
}

// HeaderSection splits b into header fields. It stops after the empty line that ends the header section and returns
// the remaining input, which is the message body.
func HeaderSection(b []byte) ([]Field, []byte) {
	hp := newHeaderParser(b)

	var fields []Field

	for {
		entry, ok := hp.next()
		if !ok {
			break
		}

		fields = append(fields, entry.field(b))
	}

	return fields, b[hp.offset:]
}

// Split returns the header section of literal, including the empty line closing it, and the body.
func Split(literal []byte) ([]byte, []byte) {
	_, body := HeaderSection(literal)

	return literal[:len(literal)-len(body)], body
}

type Header struct {
	raw    []byte
	fields []Field
}

func ParseHeader(header []byte) *Header {
	fields, rest := HeaderSection(header)

	return &Header{
		raw:    header[:len(header)-len(rest)],
		fields: fields,
	}
}

func (h *Header) Raw() []byte {
	return h.raw
}

func (h *Header) Has(key string) bool {
	return xslices.Any(h.fields, func(f Field) bool { return f.Is(key) })
}

// Get returns the unfolded value of the first field with the given name, without surrounding white space.
func (h *Header) Get(key string) string {
	return Unfold(h.GetRaw(key))
}

// GetRaw returns the raw value of the first field with the given name.
func (h *Header) GetRaw(key string) []byte {
	idx := xslices.IndexFunc(h.fields, func(f Field) bool { return f.Is(key) })
	if idx < 0 {
		return nil
	}

	return h.fields[idx].Value
}

// GetAll returns the raw values of every field with the given name, in order.
func (h *Header) GetAll(key string) [][]byte {
	return xslices.Map(
		xslices.Filter(h.fields, func(f Field) bool { return f.Is(key) }),
		func(f Field) []byte { return f.Value },
	)
}

// Entries calls fn with the name and unfolded value of every well formed field.
func (h *Header) Entries(fn func(key, val string)) {
	for _, f := range h.fields {
		if f.Valid() {
			fn(string(f.Name), Unfold(f.Value))
		}
	}
}

// Fields returns every field, malformed lines included.
func (h *Header) Fields() []Field {
	return h.fields
}

// Invalid returns the lines of the header section that are not well formed fields.
func (h *Header) Invalid() [][]byte {
	return xslices.Map(
		xslices.Filter(h.fields, func(f Field) bool { return !f.Valid() }),
		func(f Field) []byte { return f.Value },
	)
}

// GetHeaderValue is a helper method that queries a header value in a message literal.
func GetHeaderValue(literal []byte, key string) string {
	header, _ := Split(literal)

	return ParseHeader(header).Get(key)
}

var unfolder = strings.NewReplacer("\r\n", "")

// Unfold removes the folds of a raw field value and trims the white space around it.
func Unfold(value []byte) string {
	return strings.Trim(unfolder.Replace(string(bytes.TrimRight(value, "\r\n"))), " \t")
}
