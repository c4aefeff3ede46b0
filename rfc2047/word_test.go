package rfc2047

import (
	"testing"

	"github.com/ProtonMail/mailgrammar/reporter/mock_reporter"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedWord(t *testing.T) {
	inputs := map[string]Word{
		"=?x-sjis?B?lEWWQI7Kg4GM9ZTygs6CtSiPzik=?=": {
			Charset:  "x-sjis",
			Encoding: EncodingB,
			Text:     "忍法写メ光飛ばし(笑)",
		},
		"=?utf-8?b?w6l0w6kgYmxvcXXDqQ==?=": {
			Charset:  "utf-8",
			Encoding: EncodingB,
			Text:     "été bloqué",
		},
		"=?ISO-8859-1?Q?Andr=E9?=": {
			Charset:  "ISO-8859-1",
			Encoding: EncodingQ,
			Text:     "André",
		},
		"=?iso-8859-1?q?this=20is=20some=20text?=": {
			Charset:  "iso-8859-1",
			Encoding: EncodingQ,
			Text:     "this is some text",
		},
		"=?US-ASCII*EN?Q?Keith_Moore?=": {
			Charset:  "US-ASCII",
			Language: "EN",
			Encoding: EncodingQ,
			Text:     "Keith Moore",
		},
		"=?windows-1252?Q?=5BThe_Listserve=5D_Have_you_ever_seen_somet?=": {
			Charset:  "windows-1252",
			Encoding: EncodingQ,
			Text:     "[The Listserve] Have you ever seen somet",
		},
	}

	for input, expected := range inputs {
		word, rest, err := EncodedWord([]byte(input))
		require.NoError(t, err, input)
		assert.Empty(t, rest, input)
		assert.Equal(t, expected, word, input)
	}
}

func TestEncodedWordRest(t *testing.T) {
	word, rest, err := EncodedWord([]byte("=?utf-8?q?a?= tail"))
	require.NoError(t, err)
	require.Equal(t, "a", word.Text)
	require.Equal(t, []byte(" tail"), rest)
}

func TestEncodedWordFailures(t *testing.T) {
	tests := []struct {
		input string
		kind  rfcparser.Kind
		err   error
	}{
		{input: "", kind: rfcparser.KindSyntax},
		{input: "=?", kind: rfcparser.KindSyntax},
		{input: "=?utf-8?B?", kind: rfcparser.KindSyntax},
		{input: "=?utf-8?B?abc", kind: rfcparser.KindSyntax},
		{input: "=?utf-8?B??=", kind: rfcparser.KindSyntax},
		{input: "plain", kind: rfcparser.KindSyntax},
		{input: "=?utf-8?B?!!!!?=", kind: rfcparser.KindEncoding, err: ErrInvalidPayload},
		{input: "=?utf-8?B?YQ?=", kind: rfcparser.KindEncoding, err: ErrInvalidPayload},
		{input: "=?utf-8?Q?a=zz?=", kind: rfcparser.KindEncoding, err: ErrInvalidPayload},
		{input: "=?utf-8?Q?a=4?=", kind: rfcparser.KindEncoding, err: ErrInvalidPayload},
		{input: "=?utf-8?X?abc?=", kind: rfcparser.KindEncoding, err: ErrUnknownEncoding},
		{input: "=?x-no-such-charset?Q?abc?=", kind: rfcparser.KindEncoding, err: ErrUnknownCharset},
	}

	for _, test := range tests {
		_, rest, err := EncodedWord([]byte(test.input))
		require.Error(t, err, test.input)
		require.Equal(t, test.kind, rfcparser.ErrorKind(err), test.input)
		require.Equal(t, []byte(test.input), rest, test.input)

		if test.err != nil {
			require.ErrorIs(t, err, test.err, test.input)
		}
	}
}

func TestEncodedWordCharsetFallback(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	rep := mock_reporter.NewMockReporter(ctl)
	rep.EXPECT().ReportMessageWithContext("Unknown charset in encoded word", gomock.Any()).Return(nil)

	input := "=?x-no-such-charset?Q?abc?="

	word, rest, err := EncodedWord([]byte(input), rfcparser.WithCharsetFallback(), rfcparser.WithReporter(rep))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, input, word.Text)
}

func TestEncodedWordTerseDiagnostics(t *testing.T) {
	_, _, err := EncodedWord([]byte("=?utf-8?B?!!!!?="), rfcparser.WithDiagnostics(rfcparser.Terse))
	require.EqualError(t, err, "[Error offset=0]: encoding error")
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestCharset(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF-8", "x-sjis", "windows-1252", "iso-8859-15", "us-ascii", "latin1", "koi8-r"} {
		_, err := Charset(name)
		require.NoError(t, err, name)
	}

	_, err := Charset("")
	require.ErrorIs(t, err, ErrUnknownCharset)

	text, err := DecodeCharset("iso-8859-15", []byte("euro-sign=\xa4"))
	require.NoError(t, err)
	require.Equal(t, "euro-sign=€", text)

	text, err = DecodeCharset("utf-8", []byte("bad-\xff"))
	require.NoError(t, err)
	require.Equal(t, "bad-�", text)

	text, err = DecodeCharset("us-ascii", []byte("plain"))
	require.NoError(t, err)
	require.Equal(t, "plain", text)

	text, err = DecodeCharset("utf-16le", []byte("h\x00i\x00"))
	require.NoError(t, err)
	require.Equal(t, "hi", text)
}

func TestDecodeWord(t *testing.T) {
	text, err := DecodeWord("=?ISO-8859-1?Q?Andr=E9?=")
	require.NoError(t, err)
	require.Equal(t, "André", text)

	_, err = DecodeWord("=?ISO-8859-1?Q?Andr=E9?= Pirard")
	require.Error(t, err)
	require.Equal(t, 24, rfcparser.ErrorOffset(err))

	_, err = DecodeWord("André")
	require.True(t, rfcparser.IsError(err))
}

func FuzzEncodedWord(f *testing.F) {
	f.Add([]byte("=?x-sjis?B?lEWWQI7Kg4GM9ZTygs6CtSiPzik=?="))
	f.Add([]byte("=?utf-8?q?caf=C3=A9?="))
	f.Add([]byte("=?utf-8?b?w6l0w6kg"))
	f.Add([]byte("=?utf-8?q?=C3"))
	f.Add([]byte("=?\xff\xfe?b?\x80?="))

	f.Fuzz(func(t *testing.T, input []byte) {
		_, rest, err := EncodedWord(input)
		if err != nil && !rfcparser.IsError(err) {
			t.Fatalf("unexpected error type %T", err)
		}

		if len(rest) > len(input) {
			t.Fatalf("remaining input longer than input")
		}
	})
}

func FuzzDecodeText(f *testing.F) {
	f.Add("=?utf-8?q?caf=C3=A9?= =?utf-8?q?_au_lait?=")
	f.Add("=?utf-8?b?")
	f.Add("plain \xc3")

	f.Fuzz(func(t *testing.T, input string) {
		_, _ = DecodeText(input)
	})
}
