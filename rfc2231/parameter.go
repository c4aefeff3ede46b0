package rfc2231

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/reporter"
	"github.com/ProtonMail/mailgrammar/rfc2047"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// ErrSegmentCollision is returned when two continuation segments of a parameter carry the same index.
var ErrSegmentCollision = errors.New("duplicate parameter segment")

// rawParameter is a parameter as written, before its segments are put back together.
type rawParameter struct {
	name string

	// section is the continuation index, or -1 for a parameter that is not split.
	section int

	// extended is set for names ending with "*": the value is percent encoded and charset tagged.
	extended bool
	charset  string
	language string

	value []byte
}

func parseParameter(c rfcparser.Cursor) (rawParameter, rfcparser.Cursor, error) {
	//	parameter := regular-parameter / extended-parameter
	//
	//	regular-parameter := regular-parameter-name "=" value
	//	regular-parameter-name := attribute [section]
	//
	//	extended-parameter := (extended-initial-name "="
	//	                       extended-initial-value) /
	//	                      (extended-other-names "="
	//	                       extended-other-values)
	name, next, err := rfcparser.TakeWhile(isAttributeChar, 1, "parameter name")(c)
	if err != nil {
		return rawParameter{}, c, err
	}

	p := rawParameter{name: string(name), section: -1}

	if after, ok := next.MatchesByte('*'); ok && after.CheckByteWith(rfcparser.IsDigitByte) {
		if p.section, next, err = parseSection(after); err != nil {
			return rawParameter{}, c, err
		}
	}

	if after, ok := next.MatchesByte('*'); ok {
		p.extended = true
		next = after
	}

	if next, err = skipFWS(next).ConsumeBytes('='); err != nil {
		return rawParameter{}, c, err
	}

	next = skipFWS(next)

	if !p.extended {
		value, after, err := parseValue(next)
		if err != nil {
			return rawParameter{}, c, err
		}

		p.value = []byte(value)

		return p, after, nil
	}

	if p.section <= 0 {
		//	extended-initial-value := [charset] "'" [language] "'"
		//	                          extended-other-values
		charset, after := next.CollectBytesWhile(isAttributeChar)

		if after, err = after.ConsumeBytes('\''); err != nil {
			return rawParameter{}, c, err
		}

		language, after := after.CollectBytesWhile(isAttributeChar)

		if after, err = after.ConsumeBytes('\''); err != nil {
			return rawParameter{}, c, err
		}

		p.charset = string(charset)
		p.language = string(language)
		next = after
	}

	if p.value, next, err = parseExtendedValue(next); err != nil {
		return rawParameter{}, c, err
	}

	return p, next, nil
}

func parseSection(c rfcparser.Cursor) (int, rfcparser.Cursor, error) {
	//	section := initial-section / other-sections
	//	initial-section := "*0"
	//	other-sections := "*" ("1" / "2" / "3" / "4" / "5" /
	//	                        "6" / "7" / "8" / "9") *DIGIT)
	if after, ok := c.MatchesByte('0'); ok {
		return 0, after, nil
	}

	return rfcparser.Number(1, 9)(c)
}

func parseExtendedValue(c rfcparser.Cursor) ([]byte, rfcparser.Cursor, error) {
	//	extended-other-values := *(ext-octet / attribute-char)
	//	ext-octet := "%" 2(DIGIT / "A" / "B" / "C" / "D" / "E" / "F")
	var result []byte

	next := c

	for {
		if after, ok := next.MatchesByte('%'); ok {
			v, hexEnd, err := rfcparser.HexPair(after)
			if err != nil {
				return nil, c, after.WrapError(rfcparser.KindEncoding, err, "invalid percent escape in parameter value")
			}

			result = append(result, v)
			next = hexEnd

			continue
		}

		if !next.CheckByteWith(isAttributeChar) {
			return result, next, nil
		}

		b, _ := next.Peek()
		result = append(result, b)
		next = next.Advance(1)
	}
}

type segmentKey struct {
	name  string
	index int
}

// parseParameterList parses the parameters following a media type or disposition. On failure the parameters parsed
// so far are returned together with the cursor at the ";" that introduces the failing one.
func parseParameterList(c rfcparser.Cursor) ([]rawParameter, rfcparser.Cursor, error) {
	//	*(";" parameter) [";"]
	var result []rawParameter

	seen := make(map[segmentKey]struct{})

	next := c

	for {
		next = skipFWS(next)

		after, ok := next.MatchesByte(';')
		if !ok {
			return result, next, nil
		}

		after = skipFWS(after)

		if after.AtEOF() || after.Check(rfcparser.TokenTypeCR) {
			return result, after, nil
		}

		p, afterParam, err := parseParameter(after)
		if err != nil {
			return result, next, err
		}

		if p.section >= 0 {
			key := segmentKey{name: strings.ToLower(p.name), index: p.section}

			if _, ok := seen[key]; ok {
				return result, next, after.WrapError(
					rfcparser.KindEncoding,
					ErrSegmentCollision,
					fmt.Sprintf("%v: %v*%v", ErrSegmentCollision, p.name, p.section),
				)
			}

			seen[key] = struct{}{}
		}

		result = append(result, p)
		next = afterParam
	}
}

type segment struct {
	index   int
	encoded bool
	value   []byte
}

type assembly struct {
	name string

	plain    *string
	single   *string
	segments []segment
	charset  string
}

// decodeParameters reassembles continuations and decodes extended values. For a given name a value built from
// continuations wins over a single extended value, which wins over a regular value. Names are compared ignoring case
// and the result keeps the order in which names first appear.
func decodeParameters(cfg *rfcparser.Config, raw []rawParameter) []param.Param {
	var order []*assembly

	byName := make(map[string]*assembly)

	for _, p := range raw {
		key := strings.ToLower(p.name)

		a, ok := byName[key]
		if !ok {
			a = &assembly{name: p.name}
			byName[key] = a
			order = append(order, a)
		}

		switch {
		case p.section >= 0:
			a.segments = append(a.segments, segment{index: p.section, encoded: p.extended, value: p.value})

			if p.extended && p.section == 0 {
				a.charset = p.charset
			}

		case p.extended:
			value := decodeCharset(cfg, p.charset, p.value)
			a.single = &value

		default:
			value := string(p.value)
			a.plain = &value
		}
	}

	var result []param.Param

	for _, a := range order {
		switch {
		case len(a.segments) > 0:
			result = append(result, param.NewWithValue(a.name, joinSegments(cfg, a)))

		case a.single != nil:
			result = append(result, param.NewWithValue(a.name, *a.single))

		default:
			result = append(result, param.NewWithValue(a.name, *a.plain))
		}
	}

	return result
}

// joinSegments concatenates the segments of a by index. Adjacent encoded segments are decoded together so that a
// multi-byte character split over two segments survives.
func joinSegments(cfg *rfcparser.Config, a *assembly) string {
	segments := slices.Clone(a.segments)

	slices.SortFunc(segments, func(x, y segment) bool {
		return x.index < y.index
	})

	for i, s := range segments {
		if s.index != i {
			logrus.WithField("name", a.name).WithField("index", s.index).Debug("Gap in parameter continuation")

			cfg.Report("Gap in parameter continuation", reporter.Context{"name": a.name, "index": s.index})

			break
		}
	}

	var (
		out     strings.Builder
		encoded []byte
	)

	for _, s := range segments {
		if s.encoded {
			encoded = append(encoded, s.value...)
			continue
		}

		out.WriteString(decodeCharset(cfg, a.charset, encoded))
		out.Write(s.value)

		encoded = nil
	}

	out.WriteString(decodeCharset(cfg, a.charset, encoded))

	return out.String()
}

// decodeCharset converts an extended value to UTF-8. Values without a charset, or with one that is not known, are
// read as US-ASCII.
func decodeCharset(cfg *rfcparser.Config, charset string, b []byte) string {
	if len(b) == 0 {
		return ""
	}

	if charset != "" {
		decoded, err := rfc2047.DecodeCharset(charset, b)
		if err == nil {
			return decoded
		}

		logrus.WithError(err).WithField("charset", charset).Debug("Reading parameter value as US-ASCII")

		cfg.Report("Unknown charset in extended parameter", reporter.Context{"charset": charset})
	}

	var out strings.Builder

	for _, v := range b {
		if v < utf8.RuneSelf {
			out.WriteByte(v)
		} else {
			out.WriteRune(utf8.RuneError)
		}
	}

	return out.String()
}
