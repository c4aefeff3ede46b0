package rfc822

import "bytes"

var crlf = []byte("\r\n")

// headerParser walks a header section one field at a time. Lines end with CRLF; a lone CR or LF is kept as part of
// the line it appears in.
type headerParser struct {
	header []byte
	offset int
	done   bool
}

func newHeaderParser(header []byte) headerParser {
	return headerParser{header: header}
}

// next collects the next field. It returns false once the empty line closing the section was consumed or the input
// is exhausted.
func (hp *headerParser) next() (parsedHeaderEntry, bool) {
	if hp.done || hp.offset >= len(hp.header) {
		return parsedHeaderEntry{}, false
	}

	if bytes.HasPrefix(hp.header[hp.offset:], crlf) {
		hp.offset += len(crlf)
		hp.done = true

		return parsedHeaderEntry{}, false
	}

	result := parsedHeaderEntry{
		keyStart: hp.offset,
		keyEnd:   hp.offset,
	}

	// field-name      =   1*ftext
	// ftext           =   %d33-57 / %d59-126
	for result.keyEnd < len(hp.header) && isFText(hp.header[result.keyEnd]) {
		result.keyEnd++
	}

	if result.keyEnd == result.keyStart || result.keyEnd >= len(hp.header) || hp.header[result.keyEnd] != ':' {
		// Not a field: take the line as is so the walk can go on past it.
		result.keyEnd = result.keyStart
		result.valueStart = result.keyStart
		result.valueEnd = hp.lineEnd(result.keyStart)

		hp.advance(result.valueEnd)

		return result, true
	}

	result.valueStart = result.keyEnd + 1
	result.valueEnd = hp.fieldEnd(result.valueStart)

	hp.advance(result.valueEnd)

	return result, true
}

// lineEnd returns the offset of the first CRLF at or after offset.
func (hp *headerParser) lineEnd(offset int) int {
	idx := bytes.Index(hp.header[offset:], crlf)
	if idx < 0 {
		return len(hp.header)
	}

	return offset + idx
}

// fieldEnd returns the offset of the first CRLF at or after offset that is not followed by white space.
func (hp *headerParser) fieldEnd(offset int) int {
	for {
		end := hp.lineEnd(offset)
		if end+len(crlf) >= len(hp.header) {
			return end
		}

		if v := hp.header[end+len(crlf)]; v != ' ' && v != '\t' {
			return end
		}

		offset = end + len(crlf)
	}
}

// advance moves past the CRLF ending at end, if any.
func (hp *headerParser) advance(end int) {
	hp.offset = end

	if bytes.HasPrefix(hp.header[end:], crlf) {
		hp.offset += len(crlf)
	}
}

func isFText(b byte) bool {
	return (b >= 33 && b <= 57) || (b >= 59 && b <= 126)
}

type parsedHeaderEntry struct {
	keyStart   int
	keyEnd     int
	valueStart int
	valueEnd   int
}

func (p parsedHeaderEntry) hasKey() bool {
	return p.keyStart != p.keyEnd
}

func (p parsedHeaderEntry) getKey(header []byte) []byte {
	return header[p.keyStart:p.keyEnd]
}

func (p parsedHeaderEntry) getValue(header []byte) []byte {
	return header[p.valueStart:p.valueEnd]
}

func (p parsedHeaderEntry) field(header []byte) Field {
	if !p.hasKey() {
		return Field{Value: p.getValue(header)}
	}

	return Field{Name: p.getKey(header), Value: p.getValue(header)}
}
