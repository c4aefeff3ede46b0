// Package param holds the ordered key/value parameters produced by the ESMTP and MIME grammars.
package param

import (
	"strings"
)

// Param is a single parameter. Keys keep the case they were written in.
type Param struct {
	Key      string
	Value    string
	HasValue bool
}

func New(key string) Param {
	return Param{Key: key}
}

func NewWithValue(key, value string) Param {
	return Param{Key: key, Value: value, HasValue: true}
}

// Is reports whether the parameter has the given key, ignoring case.
func (p Param) Is(key string) bool {
	return strings.EqualFold(p.Key, key)
}

func (p Param) String() string {
	if !p.HasValue {
		return p.Key
	}

	return p.Key + "=" + p.Value
}

// List is an ordered parameter list.
type List []Param

// Get returns the first parameter with the given key, ignoring case.
func (l List) Get(key string) (Param, bool) {
	for _, p := range l {
		if p.Is(key) {
			return p, true
		}
	}

	return Param{}, false
}

// Value returns the value of the first parameter with the given key.
func (l List) Value(key string) string {
	p, _ := l.Get(key)
	return p.Value
}

func (l List) Has(key string) bool {
	_, ok := l.Get(key)
	return ok
}
