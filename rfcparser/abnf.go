package rfcparser

// Core rules of RFC 5234 appendix B.1 shared by all grammars.

func IsWSP(b byte) bool {
	return b == ' ' || b == '\t'
}

func IsVCHAR(b byte) bool {
	return b >= 0x21 && b <= 0x7E
}

func IsHexDigit(b byte) bool {
	return isByteDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func IsAlphaByte(b byte) bool {
	return isByteAlpha(b)
}

func IsDigitByte(b byte) bool {
	return isByteDigit(b)
}

func IsAlphaNumByte(b byte) bool {
	return isByteAlpha(b) || isByteDigit(b)
}

// IsATextByte reports whether b is an RFC 5322 atext character. The SMTP grammars share it.
func IsATextByte(b byte) bool {
	//	atext = ALPHA / DIGIT / "!" / "#" / "$" / "%" / "&" / "'" / "*" /
	//	        "+" / "-" / "/" / "=" / "?" / "^" / "_" / "`" / "{" / "|" / "}" / "~"
	if IsAlphaNumByte(b) {
		return true
	}

	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '/', '=', '?', '^', '_', '`', '{', '|', '}', '~':
		return true
	}

	return false
}

// Is8Bit reports whether b is outside the ASCII range.
func Is8Bit(b byte) bool {
	return isByteExtendedChar(b)
}

// Number parses between min and max decimal digits.
func Number(min, max int) Func[int] {
	digits := TakeWhileMN(isByteDigit, min, max, "digit")

	return func(c Cursor) (int, Cursor, error) {
		v, next, err := digits(c)
		if err != nil {
			return 0, c, err
		}

		n := 0
		for _, d := range v {
			n = n*10 + ByteToInt(d)
		}

		return n, next, nil
	}
}

// WSP consumes a single space or horizontal tab.
func WSP(c Cursor) (byte, Cursor, error) {
	return Satisfy(IsWSP, "whitespace")(c)
}

// SkipWSP consumes any amount of whitespace.
func SkipWSP(c Cursor) Cursor {
	_, next := c.CollectBytesWhile(IsWSP)
	return next
}

// CRLF consumes a line terminator.
func CRLF(c Cursor) ([]byte, Cursor, error) {
	return Tag("\r\n")(c)
}

// HexPair decodes two hexadecimal digits into a byte.
func HexPair(c Cursor) (byte, Cursor, error) {
	hi, ok1 := c.PeekAt(0)
	lo, ok2 := c.PeekAt(1)

	if !ok1 || !ok2 || !IsHexDigit(hi) || !IsHexDigit(lo) {
		return 0, c, c.MakeError("expected two hexadecimal digits")
	}

	return hexValue(hi)<<4 | hexValue(lo), c.Advance(2), nil
}

func hexValue(b byte) byte {
	switch {
	case isByteDigit(b):
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
