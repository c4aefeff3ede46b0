package rfcparser

import (
	"fmt"
)

// Cursor is a read position over an input buffer. It is a small value type: every method that moves the position
// returns a new Cursor and leaves the receiver untouched, so a caller can always retry from a saved Cursor.
type Cursor struct {
	input  []byte
	offset int
	depth  int
	cfg    *Config
}

func NewCursor(input []byte, opts ...Option) Cursor {
	return NewCursorWithConfig(input, NewConfig(opts...))
}

func NewCursorWithConfig(input []byte, cfg *Config) Cursor {
	if cfg == nil {
		cfg = NewConfig()
	}

	return Cursor{input: input, cfg: cfg}
}

func (c Cursor) Config() *Config {
	return c.cfg
}

// Offset returns the number of bytes consumed from the start of the input.
func (c Cursor) Offset() int {
	return c.offset
}

// Rest returns the unconsumed input. The returned slice aliases the original buffer.
func (c Cursor) Rest() []byte {
	return c.input[c.offset:]
}

func (c Cursor) Len() int {
	return len(c.input) - c.offset
}

func (c Cursor) AtEOF() bool {
	return c.offset >= len(c.input)
}

func (c Cursor) Depth() int {
	return c.depth
}

// Current returns the token at the cursor position, or an EOF token once the input is exhausted.
func (c Cursor) Current() Token {
	if c.AtEOF() {
		return Token{TType: TokenTypeEOF, Offset: c.offset}
	}

	b := c.input[c.offset]

	return Token{TType: Classify(b), Value: b, Offset: c.offset}
}

// Peek returns the byte at the cursor position.
func (c Cursor) Peek() (byte, bool) {
	return c.PeekAt(0)
}

// PeekAt returns the byte n positions after the cursor.
func (c Cursor) PeekAt(n int) (byte, bool) {
	if n < 0 || c.offset+n >= len(c.input) {
		return 0, false
	}

	return c.input[c.offset+n], true
}

// Check if the next token matches the given input.
func (c Cursor) Check(tokenType TokenType) bool {
	return c.Current().TType == tokenType
}

// CheckWith checks if the next token matches the given condition. It is always false at the end of the input.
func (c Cursor) CheckWith(f func(tokenType TokenType) bool) bool {
	return !c.AtEOF() && f(c.Current().TType)
}

// CheckByte checks if the next byte equals b.
func (c Cursor) CheckByte(b byte) bool {
	v, ok := c.Peek()
	return ok && v == b
}

// CheckByteWith checks if the next byte matches the given condition.
func (c Cursor) CheckByteWith(f func(b byte) bool) bool {
	v, ok := c.Peek()
	return ok && f(v)
}

// HasPrefixFold checks, ignoring ASCII case, whether the unconsumed input starts with s.
func (c Cursor) HasPrefixFold(s string) bool {
	if c.Len() < len(s) {
		return false
	}

	for i := 0; i < len(s); i++ {
		if ByteToLower(c.input[c.offset+i]) != ByteToLower(s[i]) {
			return false
		}
	}

	return true
}

// Advance skips n bytes, stopping at the end of the input.
func (c Cursor) Advance(n int) Cursor {
	if n < 0 {
		n = 0
	}

	c.offset += n
	if c.offset > len(c.input) {
		c.offset = len(c.input)
	}

	return c
}

// Matches advances past the next token and returns true if it matches the given tokenType.
func (c Cursor) Matches(tokenType TokenType) (Cursor, bool) {
	if !c.Check(tokenType) || c.AtEOF() {
		return c, false
	}

	return c.Advance(1), true
}

// MatchesWith advances past the next token and returns true if it matches the given condition.
func (c Cursor) MatchesWith(f func(tokenType TokenType) bool) (Cursor, bool) {
	if !c.CheckWith(f) {
		return c, false
	}

	return c.Advance(1), true
}

// MatchesByte advances past the next byte and returns true if it equals b.
func (c Cursor) MatchesByte(b byte) (Cursor, bool) {
	if !c.CheckByte(b) {
		return c, false
	}

	return c.Advance(1), true
}

// MatchesFold advances past s and returns true if the unconsumed input starts with s, ignoring ASCII case.
func (c Cursor) MatchesFold(s string) (Cursor, bool) {
	if !c.HasPrefixFold(s) {
		return c, false
	}

	return c.Advance(len(s)), true
}

// Consume will advance past the next token if it matches the given token. If it does not match, an error with the
// given message is returned.
func (c Cursor) Consume(tokenType TokenType, message string) (Cursor, error) {
	if next, ok := c.Matches(tokenType); ok {
		return next, nil
	}

	return c, c.MakeError(message)
}

// ConsumeWith will advance past the next token if it matches the given condition. If it does not match, an error with
// the given message is returned.
func (c Cursor) ConsumeWith(f func(tokenType TokenType) bool, message string) (Cursor, error) {
	if next, ok := c.MatchesWith(f); ok {
		return next, nil
	}

	return c, c.MakeError(message)
}

// ConsumeBytes will advance if the next bytes match the given sequence.
func (c Cursor) ConsumeBytes(chars ...byte) (Cursor, error) {
	next := c

	for _, ch := range chars {
		var ok bool

		if next, ok = next.MatchesByte(ch); !ok {
			return c, next.MakeError(fmt.Sprintf("expected byte value %x", ch))
		}
	}

	return next, nil
}

// ConsumeBytesFold behaves the same as ConsumeBytes, but case insensitive for characters.
func (c Cursor) ConsumeBytesFold(chars ...byte) (Cursor, error) {
	next := c

	for _, ch := range chars {
		v, ok := next.Peek()
		if !ok || ByteToLower(v) != ByteToLower(ch) {
			return c, next.MakeError(fmt.Sprintf("expected byte value %x", ch))
		}

		next = next.Advance(1)
	}

	return next, nil
}

// ConsumeNewLine consumes the `CRLF` sequence.
func (c Cursor) ConsumeNewLine() (Cursor, error) {
	next, err := c.Consume(TokenTypeCR, "expected CR")
	if err != nil {
		return c, err
	}

	if next, err = next.Consume(TokenTypeLF, "expected LF after CR"); err != nil {
		return c, err
	}

	return next, nil
}

// CollectWhile collects bytes while tokens match the given condition. The returned slice aliases the input.
func (c Cursor) CollectWhile(f func(tokenType TokenType) bool) ([]byte, Cursor) {
	next := c

	for next.CheckWith(f) {
		next = next.Advance(1)
	}

	return next.Since(c), next
}

// CollectBytesWhile collects bytes while they match the given condition. The returned slice aliases the input.
func (c Cursor) CollectBytesWhile(f func(b byte) bool) ([]byte, Cursor) {
	end := c.offset

	for end < len(c.input) && f(c.input[end]) {
		end++
	}

	next := c
	next.offset = end

	return next.Since(c), next
}

// Since returns the bytes consumed between start and c. Both cursors must come from the same input.
func (c Cursor) Since(start Cursor) []byte {
	if start.offset > c.offset {
		return nil
	}

	return c.input[start.offset:c.offset]
}

// Enter records that a recursive construct was opened, failing once the nesting limit is exceeded.
func (c Cursor) Enter() (Cursor, error) {
	if err := c.cfg.Limits.CheckNestingDepth(c.depth + 1); err != nil {
		return c, c.WrapError(KindRange, err, err.Error())
	}

	c.depth++

	return c, nil
}

// Leave closes a construct opened with Enter.
func (c Cursor) Leave() Cursor {
	if c.depth > 0 {
		c.depth--
	}

	return c
}

// MakeError creates a syntax error at the cursor position.
func (c Cursor) MakeError(message string) error {
	return c.MakeErrorKind(KindSyntax, message)
}

// MakeErrorKind creates an error of the given kind at the cursor position.
func (c Cursor) MakeErrorKind(kind Kind, message string) error {
	return &Error{
		Token:   c.Current(),
		Kind:    kind,
		Message: message,
	}
}

// WrapError creates an error of the given kind at the cursor position which unwraps to err.
func (c Cursor) WrapError(kind Kind, err error, message string) error {
	return &Error{
		Token:   c.Current(),
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}
