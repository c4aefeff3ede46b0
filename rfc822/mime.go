package rfc822

import (
	"strings"

	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfc2231"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

type MIMEType string

const (
	TextPlain        MIMEType = "text/plain"
	TextHTML         MIMEType = "text/html"
	MultipartMixed   MIMEType = "multipart/mixed"
	MultipartRelated MIMEType = "multipart/related"
	MessageRFC822    MIMEType = "message/rfc822"
)

// IsMultipart reports whether the type is any multipart type.
func (t MIMEType) IsMultipart() bool {
	return strings.HasPrefix(string(t), "multipart/")
}

// ParseContentType parses a Content-Type field value. A missing value stands for text/plain as RFC 2045 requires.
func ParseContentType(val string, opts ...rfcparser.Option) (MIMEType, param.List, error) {
	if strings.TrimSpace(val) == "" {
		return TextPlain, nil, nil
	}

	mediaType, params, _, err := rfc2231.ContentType([]byte(val), opts...)
	if err != nil {
		return MIMEType(mediaType), params, err
	}

	return MIMEType(mediaType), params, nil
}

// ContentType parses the Content-Type field of the header.
func (h *Header) ContentType(opts ...rfcparser.Option) (MIMEType, param.List, error) {
	return ParseContentType(h.Get("Content-Type"), opts...)
}
