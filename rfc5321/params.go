package rfc5321

import (
	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfcparser"
)

func isKeywordChar(b byte) bool {
	return rfcparser.IsAlphaNumByte(b) || b == '-'
}

func parseParam(c rfcparser.Cursor) (param.Param, rfcparser.Cursor, error) {
	//	esmtp-param    = esmtp-keyword ["=" esmtp-value]
	//	esmtp-keyword  = (ALPHA / DIGIT) *(ALPHA / DIGIT / "-")
	if !c.CheckByteWith(rfcparser.IsAlphaNumByte) {
		return param.Param{}, c, c.MakeError("expected letter or digit for parameter keyword")
	}

	keyword, next := c.CollectBytesWhile(isKeywordChar)

	afterEqual, ok := next.Matches(rfcparser.TokenTypeEqual)
	if !ok {
		return param.New(string(keyword)), next, nil
	}

	value, next, err := parseParamValue(afterEqual)
	if err != nil {
		return param.Param{}, c, err
	}

	return param.NewWithValue(string(keyword), value), next, nil
}

func parseParamValue(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	//	esmtp-value    = 1*(%d33-60 / %d62-126)
	//	               ; RFC 6531 adds UTF8-non-ascii
	intl := allow8Bit(c)

	value, next := c.CollectBytesWhile(func(b byte) bool {
		return (b >= 33 && b <= 126 && b != '=') || (intl && rfcparser.Is8Bit(b))
	})
	if len(value) == 0 {
		return "", c, c.MakeError("expected parameter value")
	}

	if err := checkUTF8(c, value); err != nil {
		return "", c, err
	}

	return string(value), next, nil
}

// parseParams parses parameters each introduced by a space until the end of the line. On failure the parameters
// parsed so far are returned with the cursor at the space before the failing one.
func parseParams(c rfcparser.Cursor) ([]param.Param, rfcparser.Cursor, error) {
	//	*(SP esmtp-param)
	var params []param.Param

	next := c

	for {
		if isLineEnd(rfcparser.SkipWSP(next)) {
			return params, next, nil
		}

		after, err := next.Consume(rfcparser.TokenTypeSP, "expected space before parameter")
		if err != nil {
			return params, next, err
		}

		p, after, err := parseParam(after)
		if err != nil {
			return params, next, err
		}

		params = append(params, p)
		next = after
	}
}
