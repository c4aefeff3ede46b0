package rfcparser

import (
	"errors"
	"fmt"
)

// Kind classifies a parse failure.
type Kind int

const (
	// KindSyntax means no alternative of the grammar matched at the failure offset.
	KindSyntax Kind = iota
	// KindEncoding means a well-formed construct carried a payload that failed to decode.
	KindEncoding
	// KindRange means a value was well-formed but outside the vocabulary of an extension.
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindEncoding:
		return "encoding error"
	case KindRange:
		return "invalid value"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Error struct {
	Token   Token
	Kind    Kind
	Message string

	// Err optionally holds a sentinel or underlying error.
	Err error
}

func (p *Error) Error() string {
	return fmt.Sprintf("[Error offset=%v]: %v", p.Token.Offset, p.Message)
}

func (p *Error) Unwrap() error {
	return p.Err
}

// Offset returns the input offset at which the failure was detected.
func (p *Error) Offset() int {
	return p.Token.Offset
}

func (p *Error) IsEOF() bool {
	return p.Token.TType == TokenTypeEOF
}

func IsError(err error) bool {
	var perr *Error
	return errors.As(err, &perr)
}

// ErrorOffset returns the offset carried by err, or -1 if err is not a parse error.
func ErrorOffset(err error) int {
	var perr *Error
	if !errors.As(err, &perr) {
		return -1
	}

	return perr.Offset()
}

// ErrorKind returns the kind carried by err. Errors that are not parse errors are reported as syntax errors.
func ErrorKind(err error) Kind {
	var perr *Error
	if !errors.As(err, &perr) {
		return KindSyntax
	}

	return perr.Kind
}

// Committed reports whether err is a failure that no alternative production can recover from: a well-formed
// construct whose payload could not be decoded or whose value is out of range.
func Committed(err error) bool {
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}

	return perr.Kind != KindSyntax
}

// furthest returns whichever error was detected further into the input.
func furthest(a, b error) error {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	if ErrorOffset(b) > ErrorOffset(a) {
		return b
	}

	return a
}
