package rfc5322

// 3.2.4.  Quoted Strings

import "github.com/ProtonMail/mailgrammar/rfcparser"

// parseQuotedString returns the content of a quoted string with its escapes removed. Folding whitespace inside the
// quotes keeps its WSP and loses its line breaks.
func parseQuotedString(c rfcparser.Cursor) (string, rfcparser.Cursor, error) {
	// quoted-string   =   [CFWS]
	//                     DQUOTE *([FWS] qcontent) [FWS] DQUOTE
	//                     [CFWS]
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return "", c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeDQuote, "expected \" for quoted string start"); err != nil {
		return "", c, err
	}

	var result []byte

	for {
		if space, ok, after := tryParseFWS(next); ok {
			result = append(result, space...)
			next = after
		}

		if next.CheckWith(isQText) {
			var text []byte

			text, next = next.CollectWhile(isQText)
			result = append(result, text...)

			continue
		}

		if !next.Check(rfcparser.TokenTypeBackslash) {
			break
		}

		var b byte

		if b, next, err = parseQuotedPair(next); err != nil {
			return "", c, err
		}

		result = append(result, b)
	}

	if next, err = next.Consume(rfcparser.TokenTypeDQuote, "expected \" for quoted string end"); err != nil {
		return "", c, err
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return "", c, err
	}

	return c.Config().Text(result), next, nil
}

func isQText(tokenType rfcparser.TokenType) bool {
	//     qtext           =   %d33 /             ; Printable US-ASCII
	//                         %d35-91 /          ;  characters not including
	//                         %d93-126 /         ;  "\" or the quote character
	//                         obs-qtext
	//
	// 	obs-qtext       =   obs-NO-WS-CTL
	//
	if (rfcparser.IsCTL(tokenType) && !isObsNoWSCTL(tokenType)) ||
		tokenType == rfcparser.TokenTypeDQuote ||
		tokenType == rfcparser.TokenTypeBackslash ||
		tokenType == rfcparser.TokenTypeSP ||
		tokenType == rfcparser.TokenTypeEOF ||
		tokenType == rfcparser.TokenTypeError {
		return false
	}

	return true
}
