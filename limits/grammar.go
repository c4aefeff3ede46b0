package limits

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// Grammar contains configurable upper limits that are enforced while parsing.
type Grammar struct {
	maxNestingDepth    int
	maxPathLength      int
	maxLocalPartLength int
	maxDomainLength    int
	maxEnvIDLength     int
}

// CheckNestingDepth fails once a recursive construct (such as a comment inside a comment) goes deeper than allowed.
func (g Grammar) CheckNestingDepth(depth int) error {
	if depth > g.maxNestingDepth {
		return fmt.Errorf("%w (%v)", ErrMaxNestingDepthReached, g.maxNestingDepth)
	}

	return nil
}

func (g Grammar) CheckPathLength(length int) error {
	if length > g.maxPathLength {
		return fmt.Errorf("%w (%v > %v)", ErrMaxPathLengthReached, length, g.maxPathLength)
	}

	return nil
}

func (g Grammar) CheckLocalPartLength(length int) error {
	if length > g.maxLocalPartLength {
		return fmt.Errorf("%w (%v > %v)", ErrMaxLocalPartLengthReached, length, g.maxLocalPartLength)
	}

	return nil
}

func (g Grammar) CheckDomainLength(length int) error {
	if length > g.maxDomainLength {
		return fmt.Errorf("%w (%v > %v)", ErrMaxDomainLengthReached, length, g.maxDomainLength)
	}

	return nil
}

func (g Grammar) CheckEnvIDLength(length int) error {
	if length > g.maxEnvIDLength {
		return fmt.Errorf("%w (%v > %v)", ErrMaxEnvIDLengthReached, length, g.maxEnvIDLength)
	}

	return nil
}

func (g Grammar) MaxNestingDepth() int {
	return g.maxNestingDepth
}

// DefaultLimits only bounds recursion and the RFC 3461 ENVID length. Path components are not limited since the
// wild is full of overlong bounce addresses.
func DefaultLimits() Grammar {
	var maxInt int
	if bits.UintSize == 64 {
		maxInt = math.MaxUint32
	} else {
		maxInt = math.MaxInt32
	}

	return Grammar{
		maxNestingDepth:    64,
		maxPathLength:      maxInt,
		maxLocalPartLength: maxInt,
		maxDomainLength:    maxInt,
		maxEnvIDLength:     100,
	}
}

// RFC5321Limits returns the size limits of RFC 5321 section 4.5.3.1.
func RFC5321Limits() Grammar {
	g := DefaultLimits()

	g.maxPathLength = 256
	g.maxLocalPartLength = 64
	g.maxDomainLength = 255

	return g
}

func NewGrammarLimits(maxNestingDepth, maxPathLength, maxLocalPartLength, maxDomainLength, maxEnvIDLength int) Grammar {
	return Grammar{
		maxNestingDepth:    maxNestingDepth,
		maxPathLength:      maxPathLength,
		maxLocalPartLength: maxLocalPartLength,
		maxDomainLength:    maxDomainLength,
		maxEnvIDLength:     maxEnvIDLength,
	}
}

var ErrMaxNestingDepthReached = errors.New("max nesting depth reached")
var ErrMaxPathLengthReached = errors.New("max path length reached")
var ErrMaxLocalPartLengthReached = errors.New("max local-part length reached")
var ErrMaxDomainLengthReached = errors.New("max domain length reached")
var ErrMaxEnvIDLengthReached = errors.New("max ENVID length reached")

func IsGrammarLimitErr(err error) bool {
	return errors.Is(err, ErrMaxNestingDepthReached) ||
		errors.Is(err, ErrMaxPathLengthReached) ||
		errors.Is(err, ErrMaxLocalPartLengthReached) ||
		errors.Is(err, ErrMaxDomainLengthReached) ||
		errors.Is(err, ErrMaxEnvIDLengthReached)
}
