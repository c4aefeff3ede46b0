package rfc2047

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Charset resolves a MIME charset name. WHATWG labels are tried first since that is what mail clients produce,
// then the IANA registry.
func Charset(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))

	if label == "" {
		return nil, fmt.Errorf("%w: empty charset", ErrUnknownCharset)
	}

	if enc, err := htmlindex.Get(label); err == nil {
		return enc, nil
	}

	if enc, err := ianaindex.MIME.Encoding(label); err == nil && enc != nil {
		return enc, nil
	}

	if enc, err := ianaindex.MIME.Encoding("cs" + label); err == nil && enc != nil {
		return enc, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// DecodeCharset converts b from the named charset to UTF-8. Byte sequences the charset cannot map become U+FFFD.
func DecodeCharset(name string, b []byte) (string, error) {
	enc, err := Charset(name)
	if err != nil {
		return "", err
	}

	decoded, _, err := transform.Bytes(transform.Chain(enc.NewDecoder(), runes.ReplaceIllFormed()), b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return string(decoded), nil
}
