// Package rfc2231 decodes the MIME header fields that carry parameters: Content-Type, Content-Disposition and
// Content-Transfer-Encoding. Parameter values may be split into numbered continuations and may be percent encoded
// with a charset and language prefix as defined by RFC 2231.
//
// Each entry point takes the field value without the field name. The value may be followed by the CRLF that ends the
// field; the input remaining after it is returned.
package rfc2231

import (
	"strings"

	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

type Disposition string

const (
	DispositionInline     Disposition = "inline"
	DispositionAttachment Disposition = "attachment"
)

type TransferEncoding string

const (
	Encoding7Bit            TransferEncoding = "7bit"
	Encoding8Bit            TransferEncoding = "8bit"
	EncodingBinary          TransferEncoding = "binary"
	EncodingBase64          TransferEncoding = "base64"
	EncodingQuotedPrintable TransferEncoding = "quoted-printable"
)

// ContentType parses a Content-Type value into its lowercased media type and its parameters. On a parameter
// failure the media type and the parameters before the failing one are returned with the input starting there.
func ContentType(b []byte, opts ...rfcparser.Option) (string, []param.Param, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	mediaType, next, err := parseMediaType(skipFWS(c))
	if err != nil {
		return "", nil, b, c.Config().Diagnose(err)
	}

	params, next, err := parseParameters(next)
	if err != nil {
		return mediaType, params, next.Rest(), c.Config().Diagnose(err)
	}

	return mediaType, params, next.Rest(), nil
}

// ContentDisposition parses a Content-Disposition value. Extension dispositions are returned lowercased.
func ContentDisposition(b []byte, opts ...rfcparser.Option) (Disposition, []param.Param, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	disposition, next, err := parseDisposition(skipFWS(c))
	if err != nil {
		return "", nil, b, c.Config().Diagnose(err)
	}

	params, next, err := parseParameters(next)
	if err != nil {
		return disposition, params, next.Rest(), c.Config().Diagnose(err)
	}

	return disposition, params, next.Rest(), nil
}

// ContentTransferEncoding parses a Content-Transfer-Encoding value. Extension encodings are returned lowercased.
func ContentTransferEncoding(b []byte, opts ...rfcparser.Option) (TransferEncoding, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	encoding, next, err := parseTransferEncoding(skipFWS(c))
	if err != nil {
		return "", b, c.Config().Diagnose(err)
	}

	end, err := consumeFieldEnd(next)
	if err != nil {
		return encoding, next.Rest(), c.Config().Diagnose(err)
	}

	return encoding, end.Rest(), nil
}

// Params parses a parameter list on its own, each parameter being introduced by ";".
func Params(b []byte, opts ...rfcparser.Option) ([]param.Param, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	params, next, err := parseParameters(c)
	if err != nil {
		return params, next.Rest(), c.Config().Diagnose(err)
	}

	return params, next.Rest(), nil
}

func parseMediaType(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	type "/" subtype
	mediaType, next, err := rfcparser.Recognize[[]byte](rfcparser.Terminated[[]byte, []byte](
		rfcparser.Terminated[[]byte, byte](parseToken, rfcparser.Byte('/')),
		parseToken,
	))(c)
	if err != nil {
		return "", c, err
	}

	return strings.ToLower(string(mediaType)), next, nil
}

func parseDisposition(c rfcparser.Cursor) (Disposition, rfcparser.Cursor, error) {
	//	disposition-type := "inline"
	//	                  / "attachment"
	//	                  / extension-token
	return rfcparser.Alt[Disposition](
		rfcparser.Map[[]byte, Disposition](rfcparser.TagFold("inline"), func([]byte) Disposition { return DispositionInline }),
		rfcparser.Map[[]byte, Disposition](rfcparser.TagFold("attachment"), func([]byte) Disposition { return DispositionAttachment }),
		rfcparser.Map[string, Disposition](parseXToken, func(v string) Disposition { return Disposition(v) }),
	)(c)
}

func parseTransferEncoding(c rfcparser.Cursor) (TransferEncoding, rfcparser.Cursor, error) {
	//	mechanism := "7bit" / "8bit" / "binary" /
	//	             "quoted-printable" / "base64" /
	//	             ietf-token / x-token
	encodings := []TransferEncoding{
		Encoding7Bit,
		Encoding8Bit,
		EncodingBinary,
		EncodingBase64,
		EncodingQuotedPrintable,
	}

	for _, encoding := range encodings {
		if next, ok := c.MatchesFold(string(encoding)); ok {
			return encoding, next, nil
		}
	}

	token, next, err := parseXToken(c)
	if err != nil {
		return "", c, err
	}

	return TransferEncoding(token), next, nil
}

// parseXToken parses a private extension token and returns it lowercased.
func parseXToken(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	x-token := <The two characters "X-" or "x-" followed, with
	//	            no intervening white space, by any token>
	token, next, err := rfcparser.Recognize[[]byte](
		rfcparser.Preceded[[]byte, []byte](rfcparser.TagFold("x-"), parseToken),
	)(c)
	if err != nil {
		return "", c, err
	}

	return strings.ToLower(string(token)), next, nil
}

func parseParameters(c rfcparser.Cursor) ([]param.Param, rfcparser.Cursor, error) {
	raw, next, err := parseParameterList(c)

	params := decodeParameters(c.Config(), raw)

	if err != nil {
		return params, next, err
	}

	end, err := consumeFieldEnd(next)
	if err != nil {
		return params, next, err
	}

	return params, end, nil
}

// consumeFieldEnd accepts trailing white space followed by the end of the input or a CRLF.
func consumeFieldEnd(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	next := skipFWS(c)

	if next.AtEOF() {
		return next, nil
	}

	end, err := next.ConsumeNewLine()
	if err != nil {
		return c, next.MakeError("expected end of field")
	}

	return end, nil
}
