package rfc822

import (
	"testing"

	"github.com/bradenaw/juniper/xslices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const literal = "To: somebody\r\nFrom: somebody else\r\nSubject: this is\r\n\ta multiline field\r\nFrom: duplicate entry\r\n\r\n"

type testField struct {
	name  string
	value string
	valid bool
}

func valid(name, value string) testField {
	return testField{name: name, value: value, valid: true}
}

func invalid(value string) testField {
	return testField{value: value}
}

func toTestFields(fields []Field) []testField {
	return xslices.Map(fields, func(f Field) testField {
		return testField{name: string(f.Name), value: string(f.Value), valid: f.Valid()}
	})
}

func TestHeaderSection(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		fields []testField
	}{
		{
			name:  "basic",
			input: "X-Mozilla-Status: 0001\r\nX-Mozilla-Status2: 00800000\r\n",
			fields: []testField{
				valid("X-Mozilla-Status", " 0001"),
				valid("X-Mozilla-Status2", " 00800000"),
			},
		},
		{
			name:  "lone LF",
			input: "X-Mozilla-Status: 0001\r\nX-Mozilla-Status2: 00800000\nmore stuff\r\n",
			fields: []testField{
				valid("X-Mozilla-Status", " 0001"),
				valid("X-Mozilla-Status2", " 00800000\nmore stuff"),
			},
		},
		{
			name:  "lone CR",
			input: "X-Mozilla-Status: 0001\r\nX-Mozilla-Status2: 00800000\rmore stuff\r\n",
			fields: []testField{
				valid("X-Mozilla-Status", " 0001"),
				valid("X-Mozilla-Status2", " 00800000\rmore stuff"),
			},
		},
		{
			name:  "folded",
			input: "X-Mozilla-Status: 0001\r\nContent-Type: multipart/alternative;\r\n  boundary=\"------------000500020107050007070009\r\nX-Mozilla-Status2: 00800000\r\n",
			fields: []testField{
				valid("X-Mozilla-Status", " 0001"),
				valid("Content-Type", " multipart/alternative;\r\n  boundary=\"------------000500020107050007070009"),
				valid("X-Mozilla-Status2", " 00800000"),
			},
		},
		{
			name:  "garbage",
			input: "X-Mozilla-Status: 0001\r\nbad header 00800000\r\nX-Mozilla-Keys: badly\nformated\nstuff is should \r w\nork#!@#$%\r^&*()_|\"}{P?><           \r\nanother bad header <4F34184B.7040006@example.com>\r\nDate: Thu, 09 Feb 2012 14:02:35 -0500\r\n",
			fields: []testField{
				valid("X-Mozilla-Status", " 0001"),
				invalid("bad header 00800000"),
				valid("X-Mozilla-Keys", " badly\nformated\nstuff is should \r w\nork#!@#$%\r^&*()_|\"}{P?><           "),
				invalid("another bad header <4F34184B.7040006@example.com>"),
				valid("Date", " Thu, 09 Feb 2012 14:02:35 -0500"),
			},
		},
		{
			name:  "8-bit value",
			input: "Subject: caf\xc3\xa9 \xff\r\n",
			fields: []testField{
				valid("Subject", " caf\xc3\xa9 \xff"),
			},
		},
		{
			name:  "unterminated last line",
			input: "To: somebody\r\nSubject: last",
			fields: []testField{
				valid("To", " somebody"),
				valid("Subject", " last"),
			},
		},
		{
			name:  "mbox separator",
			input: "From somebody@example.com Mon Jan  1 00:00:00 2001\r\nTo: somebody\r\n",
			fields: []testField{
				invalid("From somebody@example.com Mon Jan  1 00:00:00 2001"),
				valid("To", " somebody"),
			},
		},
		{
			name:  "empty value",
			input: "Subject:\r\n",
			fields: []testField{
				valid("Subject", ""),
			},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			fields, rest := HeaderSection([]byte(test.input))
			assert.Empty(t, rest)
			assert.Equal(t, test.fields, toTestFields(fields))
		})
	}
}

func TestHeaderSectionStopsAtBody(t *testing.T) {
	fields, rest := HeaderSection([]byte("To: somebody\r\n\r\nTo: not a field\r\n"))
	assert.Equal(t, []testField{valid("To", " somebody")}, toTestFields(fields))
	assert.Equal(t, "To: not a field\r\n", string(rest))
}

func TestHeaderSectionEmpty(t *testing.T) {
	fields, rest := HeaderSection(nil)
	assert.Empty(t, fields)
	assert.Empty(t, rest)

	fields, rest = HeaderSection([]byte("\r\nbody"))
	assert.Empty(t, fields)
	assert.Equal(t, "body", string(rest))
}

func TestHeader_Raw(t *testing.T) {
	header := ParseHeader([]byte(literal))
	assert.Equal(t, literal, string(header.Raw()))
}

func TestHeader_Has(t *testing.T) {
	const literal = "To: somebody\r\nFrom: somebody else\r\nSubject: this is\r\n\ta multiline field\r\nFrom: duplicate entry\r\nReferences:\r\n\t <foo@bar.com>\r\n\r\n"

	header := ParseHeader([]byte(literal))

	assert.Equal(t, true, header.Has("To"))
	assert.Equal(t, true, header.Has("to"))
	assert.Equal(t, false, header.Has("Too"))
	assert.Equal(t, true, header.Has("From"))
	assert.Equal(t, true, header.Has("References"))
	assert.Equal(t, false, header.Has("Reply-To"))
}

func TestHeader_Get(t *testing.T) {
	header := ParseHeader([]byte(literal))

	assert.Equal(t, "somebody", header.Get("To"))
	assert.Equal(t, "somebody else", header.Get("From"))
	assert.Equal(t, "this is\ta multiline field", header.Get("Subject"))
	assert.Equal(t, "", header.Get("Reply-To"))
}

func TestHeader_GetRaw(t *testing.T) {
	header := ParseHeader([]byte(literal))

	assert.Equal(t, " somebody", string(header.GetRaw("To")))
	assert.Equal(t, " this is\r\n\ta multiline field", string(header.GetRaw("subject")))
	assert.Nil(t, header.GetRaw("Reply-To"))
}

func TestHeader_GetAll(t *testing.T) {
	header := ParseHeader([]byte(literal))

	values := xslices.Map(header.GetAll("From"), func(v []byte) string { return string(v) })

	assert.Equal(t, []string{" somebody else", " duplicate entry"}, values)
	assert.Empty(t, header.GetAll("Reply-To"))
}

func TestHeader_Entries(t *testing.T) {
	header := ParseHeader([]byte("To: somebody\r\nbad line\r\nSubject: this is\r\n\ta multiline field\r\n\r\n"))

	var keys, values []string

	header.Entries(func(key, val string) {
		keys = append(keys, key)
		values = append(values, val)
	})

	assert.Equal(t, []string{"To", "Subject"}, keys)
	assert.Equal(t, []string{"somebody", "this is\ta multiline field"}, values)
}

func TestHeader_Invalid(t *testing.T) {
	header := ParseHeader([]byte("To: somebody\r\nbad line\r\n: no name\r\n\r\n"))

	invalid := xslices.Map(header.Invalid(), func(v []byte) string { return string(v) })

	assert.Equal(t, []string{"bad line", ": no name"}, invalid)
	assert.Len(t, header.Fields(), 3)
}

func TestHeader_SubjectWithRandomQuote(t *testing.T) {
	const literal = "Subject: Hello \"world\r\nTo: somebody\r\n\r\n"

	header := ParseHeader([]byte(literal))

	assert.Equal(t, "Hello \"world", header.Get("Subject"))
	assert.Equal(t, "somebody", header.Get("To"))
}

func TestHeader_WithTrailingSpaces(t *testing.T) {
	header := ParseHeader([]byte("Subject: trailing   \r\n\r\n"))

	assert.Equal(t, "trailing", header.Get("Subject"))
	assert.Equal(t, " trailing   ", string(header.GetRaw("Subject")))
}

func TestSplitHeaderBody(t *testing.T) {
	header, body := Split([]byte("To: somebody\r\nFrom: somebody else\r\n\r\nthis is the body\r\n"))

	assert.Equal(t, "To: somebody\r\nFrom: somebody else\r\n\r\n", string(header))
	assert.Equal(t, "this is the body\r\n", string(body))
}

func TestSplitHeaderBodyNoBody(t *testing.T) {
	header, body := Split([]byte("To: somebody\r\nFrom: somebody else\r\n\r\n"))

	assert.Equal(t, "To: somebody\r\nFrom: somebody else\r\n\r\n", string(header))
	assert.Empty(t, body)
}

func TestSplitHeaderBodyOnlyHeaderNoNewline(t *testing.T) {
	header, body := Split([]byte("To: somebody\r\nFrom: somebody else"))

	assert.Equal(t, "To: somebody\r\nFrom: somebody else", string(header))
	assert.Empty(t, body)
}

func TestGetHeaderValue(t *testing.T) {
	const message = "To: somebody\r\nSubject: hello\r\n\r\nSubject: not this one\r\n"

	assert.Equal(t, "hello", GetHeaderValue([]byte(message), "subject"))
	assert.Equal(t, "", GetHeaderValue([]byte(message), "Cc"))
}

func TestUnfold(t *testing.T) {
	assert.Equal(t, "a\tb c", Unfold([]byte(" a\r\n\tb\r\n c\r\n")))
	assert.Equal(t, "", Unfold(nil))
}

func TestParseContentType(t *testing.T) {
	mimeType, params, err := ParseContentType("")
	require.NoError(t, err)
	assert.Equal(t, TextPlain, mimeType)
	assert.Empty(t, params)

	mimeType, params, err = ParseContentType(" Multipart/Mixed;\r\n boundary=\"frontier\"")
	require.NoError(t, err)
	assert.Equal(t, MultipartMixed, mimeType)
	assert.True(t, mimeType.IsMultipart())
	assert.Equal(t, "frontier", params.Value("boundary"))

	_, _, err = ParseContentType("text")
	require.Error(t, err)
}

func TestHeader_ContentType(t *testing.T) {
	header := ParseHeader([]byte("Content-Type: text/html;\r\n charset*=utf-8''caf%C3%A9\r\n\r\n"))

	mimeType, params, err := header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, TextHTML, mimeType)
	assert.False(t, mimeType.IsMultipart())
	assert.Equal(t, "café", params.Value("charset"))

	mimeType, _, err = ParseHeader([]byte("To: somebody\r\n\r\n")).ContentType()
	require.NoError(t, err)
	assert.Equal(t, TextPlain, mimeType)
}

func FuzzHeaderSection(f *testing.F) {
	f.Add([]byte(literal))
	f.Add([]byte("X-Mozilla-Keys: badly\nformated\r\nbad header\r\n\r\nbody"))

	f.Fuzz(func(t *testing.T, input []byte) {
		fields, rest := HeaderSection(input)

		for _, field := range fields {
			if len(field.Value) > len(input) {
				t.Fatalf("field value longer than input")
			}
		}

		if len(rest) > len(input) {
			t.Fatalf("remaining input longer than input")
		}
	})
}
