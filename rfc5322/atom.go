package rfc5322

// 3.2.3.  Atom

import (
	"strings"

	"github.com/ProtonMail/mailgrammar/rfcparser"
)

func parseDotAtom(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	// dot-atom        =   [CFWS] dot-atom-text [CFWS]
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return "", c, err
	}

	atom, next, err := parseDotAtomText(next)
	if err != nil {
		return "", c, err
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return "", c, err
	}

	return c.Config().Text(atom), next, nil
}

func parseDotAtomText(c rfcparser.Cursor) ([]byte, rfcparser.Cursor, error) {
	//  dot-atom-text   =   1*atext *("." 1*atext)
	next, err := c.ConsumeWith(isAText, "expected atext char for dot-atom-text")
	if err != nil {
		return nil, c, err
	}

	_, next = next.CollectWhile(isAText)

	for {
		afterDot, ok := next.Matches(rfcparser.TokenTypePeriod)
		if !ok || !afterDot.CheckWith(isAText) {
			break
		}

		_, next = afterDot.CollectWhile(isAText)
	}

	return next.Since(c), next, nil
}

func parseAtom(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	// atom            =   [CFWS] 1*atext [CFWS]
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return "", c, err
	}

	if !next.CheckWith(isAText) {
		return "", c, next.MakeError("expected atext char for atom")
	}

	atom, next := next.CollectWhile(isAText)

	if _, next, err = tryParseCFWS(next); err != nil {
		return "", c, err
	}

	return c.Config().Text(atom), next, nil
}

// parseObsDotAtom parses atoms separated by "." where each atom may be surrounded by CFWS.
func parseObsDotAtom(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	// obs-domain      =   atom *("." atom)
	first, next, err := parseAtom(c)
	if err != nil {
		return "", c, err
	}

	parts := []string{first}

	for {
		afterDot, ok := next.Matches(rfcparser.TokenTypePeriod)
		if !ok {
			break
		}

		part, after, err := parseAtom(afterDot)
		if err != nil {
			break
		}

		parts = append(parts, part)
		next = after
	}

	return strings.Join(parts, "."), next, nil
}

func isAText(tokenType rfcparser.TokenType) bool {
	//     atext           =   ALPHA / DIGIT /    ; Printable US-ASCII
	//                         "!" / "#" /        ;  characters not including
	//                         "$" / "%" /        ;  specials.  Used for atoms.
	//                         "&" / "'" /
	//                         "*" / "+" /
	//                         "-" / "/" /
	//                         "=" / "?" /
	//                         "^" / "_" /
	//                         "`" / "{" /
	//                         "|" / "}" /
	//                         "~"
	switch tokenType { //nolint:exhaustive
	case rfcparser.TokenTypeDigit,
		rfcparser.TokenTypeChar,
		rfcparser.TokenTypeExclamation,
		rfcparser.TokenTypeHash,
		rfcparser.TokenTypeDollar,
		rfcparser.TokenTypePercent,
		rfcparser.TokenTypeAmpersand,
		rfcparser.TokenTypeSQuote,
		rfcparser.TokenTypeAsterisk,
		rfcparser.TokenTypePlus,
		rfcparser.TokenTypeMinus,
		rfcparser.TokenTypeSlash,
		rfcparser.TokenTypeEqual,
		rfcparser.TokenTypeQuestion,
		rfcparser.TokenTypeCaret,
		rfcparser.TokenTypeUnderscore,
		rfcparser.TokenTypeBacktick,
		rfcparser.TokenTypeLCurly,
		rfcparser.TokenTypeRCurly,
		rfcparser.TokenTypePipe,
		rfcparser.TokenTypeExtendedChar, // RFC6532
		rfcparser.TokenTypeTilde:
		return true
	default:
		return false
	}
}
