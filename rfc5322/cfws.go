package rfc5322

import "github.com/ProtonMail/mailgrammar/rfcparser"

// Section 3.2.2 White space and Comments

func tryParseCFWS(c rfcparser.Cursor) (bool, rfcparser.Cursor, error) {
	if !c.CheckWith(func(tokenType rfcparser.TokenType) bool {
		return isWSP(tokenType) || tokenType == rfcparser.TokenTypeCR || tokenType == rfcparser.TokenTypeLParen
	}) {
		return false, c, nil
	}

	next, err := parseCFWS(c)
	if err != nil {
		if isFWSError(c, err) {
			return false, c, nil
		}

		return false, c, err
	}

	return true, next, nil
}

// isFWSError reports whether parseCFWS failed only because there was no whitespace at c, as happens on a CRLF that
// terminates the field instead of folding it.
func isFWSError(c rfcparser.Cursor, err error) bool {
	return rfcparser.ErrorOffset(err) == c.Offset() && !c.Check(rfcparser.TokenTypeLParen)
}

func parseCFWS(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	// CFWS            =   (1*([FWS] comment) [FWS]) / FWS
	_, parsedFirstFWS, next := tryParseFWS(c)

	// Handle case where it can just be FWS without comment
	if !next.Check(rfcparser.TokenTypeLParen) {
		if !parsedFirstFWS {
			return c, c.MakeError("expected FWS or comment for CFWS")
		}

		return next, nil
	}

	for next.Check(rfcparser.TokenTypeLParen) {
		var err error

		if next, err = parseComment(next); err != nil {
			return c, err
		}

		_, _, next = tryParseFWS(next)
	}

	return next, nil
}

// tryParseFWS consumes folding white space if present and returns its whitespace with the line breaks removed.
func tryParseFWS(c rfcparser.Cursor) ([]byte, bool, rfcparser.Cursor) {
	space, next, err := parseFWS(c)
	if err != nil {
		return nil, false, c
	}

	return space, true, next
}

func parseFWS(c rfcparser.Cursor) ([]byte, rfcparser.Cursor, error) {
	// FWS             =   ([*WSP CRLF] 1*WSP) /  obs-FWS
	//                     ; Folding white space
	// obs-FWS         =   1*WSP *(CRLF 1*WSP)
	//
	// A CRLF is only part of FWS when followed by WSP, otherwise it ends the field.
	var space []byte

	next := c

	for {
		wsp, after := next.CollectBytesWhile(rfcparser.IsWSP)
		space = append(space, wsp...)
		next = after

		folded, ok := matchFold(next)
		if !ok {
			break
		}

		next = folded
	}

	if next.Offset() == c.Offset() {
		return nil, c, c.MakeError("expected FWS")
	}

	return space, next, nil
}

// matchFold consumes a CRLF followed by WSP.
func matchFold(c rfcparser.Cursor) (rfcparser.Cursor, bool) {
	next, err := c.ConsumeNewLine()
	if err != nil || !next.CheckByteWith(rfcparser.IsWSP) {
		return c, false
	}

	return next, true
}

func parseCContent(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	// ccontent        =   ctext / quoted-pair / comment
	if _, next := c.CollectWhile(isCText); next.Offset() > c.Offset() {
		return next, nil
	}

	if c.Check(rfcparser.TokenTypeBackslash) {
		_, next, err := parseQuotedPair(c)
		return next, err
	}

	if c.Check(rfcparser.TokenTypeLParen) {
		return parseComment(c)
	}

	return c, c.MakeError("unexpected ccontent token")
}

func parseComment(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	// comment         =   "(" *([FWS] ccontent) [FWS] ")"
	next, err := c.Consume(rfcparser.TokenTypeLParen, "expected ( for comment start")
	if err != nil {
		return c, err
	}

	if next, err = next.Enter(); err != nil {
		return c, err
	}

	for {
		_, _, next = tryParseFWS(next)

		if !next.CheckWith(func(tokenType rfcparser.TokenType) bool {
			return isCText(tokenType) || tokenType == rfcparser.TokenTypeBackslash || tokenType == rfcparser.TokenTypeLParen
		}) {
			break
		}

		if next, err = parseCContent(next); err != nil {
			return c, err
		}
	}

	if next, err = next.Consume(rfcparser.TokenTypeRParen, "expected ) for comment end"); err != nil {
		return c, err
	}

	return next.Leave(), nil
}

func parseQuotedPair(c rfcparser.Cursor) (byte, rfcparser.Cursor, error) {
	// quoted-pair     =   ("\" (VCHAR / WSP)) / obs-qp
	//
	// obs-qp          =   "\" (%d0 / obs-NO-WS-CTL / LF / CR)
	//
	next, err := c.Consume(rfcparser.TokenTypeBackslash, "expected \\ for quoted pair start")
	if err != nil {
		return 0, c, err
	}

	if !next.CheckWith(func(tokenType rfcparser.TokenType) bool {
		return isVChar(tokenType) ||
			isWSP(tokenType) ||
			isObsNoWSCTL(tokenType) ||
			tokenType == rfcparser.TokenTypeCR ||
			tokenType == rfcparser.TokenTypeLF ||
			tokenType == rfcparser.TokenTypeZero
	}) {
		return 0, c, next.MakeError("unexpected character for quoted pair")
	}

	return next.Current().Value, next.Advance(1), nil
}

func isWSP(tokenType rfcparser.TokenType) bool {
	return tokenType == rfcparser.TokenTypeSP || tokenType == rfcparser.TokenTypeTab
}

func isCText(tokenType rfcparser.TokenType) bool {
	//  ctext           =   %d33-39 /          ; Printable US-ASCII
	//                      %d42-91 /          ;  characters not including
	//                      %d93-126 /         ;  "(", ")", or "\"
	//                      obs-ctext
	//
	//  obs-ctext       =   obs-NO-WS-CTL
	switch tokenType { // nolint:exhaustive
	case rfcparser.TokenTypeEOF,
		rfcparser.TokenTypeError,
		rfcparser.TokenTypeLParen,
		rfcparser.TokenTypeRParen,
		rfcparser.TokenTypeCR,
		rfcparser.TokenTypeTab,
		rfcparser.TokenTypeLF,
		rfcparser.TokenTypeSP,
		rfcparser.TokenTypeZero,
		rfcparser.TokenTypeBackslash:
		return false
	default:
		return true
	}
}

func isObsNoWSCTL(tokenType rfcparser.TokenType) bool {
	//  obs-NO-WS-CTL   =   %d1-8 /            ; US-ASCII control
	//                        %d11 /             ;  characters that do not
	//                        %d12 /             ;  include the carriage
	//                        %d14-31 /          ;  return, line feed, and
	//                        %d127              ;  white space characters
	return tokenType == rfcparser.TokenTypeCTL || tokenType == rfcparser.TokenTypeDelete
}

func isVChar(tokenType rfcparser.TokenType) bool {
	// VChar %x21-7E, extended by RFC 6532 to UTF-8 octets.
	if rfcparser.IsCTL(tokenType) ||
		isWSP(tokenType) ||
		tokenType == rfcparser.TokenTypeDelete ||
		tokenType == rfcparser.TokenTypeError ||
		tokenType == rfcparser.TokenTypeEOF {
		return false
	}

	return true
}
