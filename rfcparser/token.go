package rfcparser

type TokenType int

const (
	TokenTypeEOF TokenType = iota
	TokenTypeError
	TokenTypeSP
	TokenTypeExclamation
	TokenTypeDQuote
	TokenTypeHash
	TokenTypeDollar
	TokenTypePercent
	TokenTypeAmpersand
	TokenTypeSQuote
	TokenTypeLParen
	TokenTypeRParen
	TokenTypeAsterisk
	TokenTypePlus
	TokenTypeComma
	TokenTypeMinus
	TokenTypePeriod
	TokenTypeSlash
	TokenTypeSemicolon
	TokenTypeColon
	TokenTypeLess
	TokenTypeEqual
	TokenTypeGreater
	TokenTypeQuestion
	TokenTypeAt
	TokenTypeLBracket
	TokenTypeRBracket
	TokenTypeCaret
	TokenTypeUnderscore
	TokenTypeBacktick
	TokenTypeLCurly
	TokenTypePipe
	TokenTypeRCurly
	TokenTypeTilde
	TokenTypeBackslash
	TokenTypeDigit
	TokenTypeChar
	TokenTypeExtendedChar
	TokenTypeCR
	TokenTypeLF
	TokenTypeTab
	TokenTypeZero
	TokenTypeDelete
	TokenTypeCTL
)

// Token is a single classified byte of the input.
type Token struct {
	TType  TokenType
	Value  byte
	Offset int
}

var punctuation = [128]TokenType{
	' ':  TokenTypeSP,
	'!':  TokenTypeExclamation,
	'"':  TokenTypeDQuote,
	'#':  TokenTypeHash,
	'$':  TokenTypeDollar,
	'%':  TokenTypePercent,
	'&':  TokenTypeAmpersand,
	'\'': TokenTypeSQuote,
	'(':  TokenTypeLParen,
	')':  TokenTypeRParen,
	'*':  TokenTypeAsterisk,
	'+':  TokenTypePlus,
	',':  TokenTypeComma,
	'-':  TokenTypeMinus,
	'.':  TokenTypePeriod,
	'/':  TokenTypeSlash,
	':':  TokenTypeColon,
	';':  TokenTypeSemicolon,
	'<':  TokenTypeLess,
	'=':  TokenTypeEqual,
	'>':  TokenTypeGreater,
	'?':  TokenTypeQuestion,
	'@':  TokenTypeAt,
	'[':  TokenTypeLBracket,
	']':  TokenTypeRBracket,
	'^':  TokenTypeCaret,
	'_':  TokenTypeUnderscore,
	'`':  TokenTypeBacktick,
	'{':  TokenTypeLCurly,
	'|':  TokenTypePipe,
	'}':  TokenTypeRCurly,
	'~':  TokenTypeTilde,
	'\\': TokenTypeBackslash,
}

// Classify returns the token type of a single input byte.
func Classify(b byte) TokenType {
	switch {
	case isByteDigit(b):
		return TokenTypeDigit
	case isByteAlpha(b):
		return TokenTypeChar
	case isByteExtendedChar(b):
		return TokenTypeExtendedChar
	case b == 0:
		return TokenTypeZero
	case b == '\r':
		return TokenTypeCR
	case b == '\n':
		return TokenTypeLF
	case b == '\t':
		return TokenTypeTab
	case b == 0x7F:
		return TokenTypeDelete
	case isByteCTL(b):
		return TokenTypeCTL
	}

	return punctuation[b]
}

func isByteAlpha(b byte) bool {
	return (b >= 65 && b <= 90) || (b >= 97 && b <= 122)
}

func isByteDigit(b byte) bool {
	return b >= byte('0') && b <= byte('9')
}

func isByteExtendedChar(b byte) bool {
	return b >= 128
}

func isByteCTL(b byte) bool {
	return b <= 31
}

func ByteToLower(b byte) byte {
	if b >= 65 && b <= 90 {
		return 97 + (b - byte(65))
	}

	return b
}

func ByteToInt(b byte) int {
	return int(b) - int(byte('0'))
}

func IsCTL(tokenType TokenType) bool {
	switch tokenType { //nolint:exhaustive
	case TokenTypeCTL, TokenTypeCR, TokenTypeLF, TokenTypeTab, TokenTypeZero:
		return true
	}

	return false
}

func IsAlpha(tokenType TokenType) bool {
	return tokenType == TokenTypeChar
}

func IsDigit(tokenType TokenType) bool {
	return tokenType == TokenTypeDigit
}

func IsAlphaNum(tokenType TokenType) bool {
	return tokenType == TokenTypeChar || tokenType == TokenTypeDigit
}

func IsQuotedSpecial(tokenType TokenType) bool {
	return tokenType == TokenTypeDQuote || tokenType == TokenTypeBackslash
}
