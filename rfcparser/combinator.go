package rfcparser

import (
	"fmt"
)

// Func is a grammar production: it parses a value at the cursor and returns it with the cursor positioned after it.
// On failure the returned cursor is the one that was passed in.
type Func[T any] func(c Cursor) (T, Cursor, error)

// Alt tries the given productions in order and commits to the first one that succeeds. If all of them fail, the
// failure that got furthest into the input is returned. Encoding and range failures are returned immediately.
func Alt[T any](parsers ...Func[T]) Func[T] {
	return func(c Cursor) (T, Cursor, error) {
		var errs error

		for _, p := range parsers {
			v, next, err := p(c)
			if err == nil {
				return v, next, nil
			}

			if Committed(err) {
				var zero T
				return zero, c, err
			}

			errs = furthest(errs, err)
		}

		if errs == nil {
			errs = c.MakeError("no alternative matched")
		}

		var zero T

		return zero, c, errs
	}
}

// Opt makes a production optional. The boolean result reports whether it matched.
func Opt[T any](p Func[T]) func(c Cursor) (T, bool, Cursor) {
	return func(c Cursor) (T, bool, Cursor) {
		v, next, err := p(c)
		if err != nil {
			var zero T
			return zero, false, c
		}

		return v, true, next
	}
}

// Many applies p as often as it succeeds and collects the values. It stops on a match that consumes nothing.
func Many[T any](p Func[T]) Func[[]T] {
	return ManyMN(p, 0, -1)
}

// Many1 is like Many but requires at least one match.
func Many1[T any](p Func[T]) Func[[]T] {
	return ManyMN(p, 1, -1)
}

// ManyMN applies p at least min and at most max times. A negative max means unbounded. Encoding and range
// failures of p are returned instead of ending the repetition.
func ManyMN[T any](p Func[T], min, max int) Func[[]T] {
	return func(c Cursor) ([]T, Cursor, error) {
		var values []T

		next := c

		for max < 0 || len(values) < max {
			v, after, err := p(next)
			if err != nil {
				if len(values) < min || Committed(err) {
					return nil, c, err
				}

				break
			}

			if after.offset == next.offset {
				break
			}

			values = append(values, v)
			next = after
		}

		if len(values) < min {
			return nil, c, next.MakeError(fmt.Sprintf("expected at least %v repetitions", min))
		}

		return values, next, nil
	}
}

// SeparatedList parses one or more p separated by sep.
func SeparatedList[T, S any](p Func[T], sep Func[S]) Func[[]T] {
	return func(c Cursor) ([]T, Cursor, error) {
		first, next, err := p(c)
		if err != nil {
			return nil, c, err
		}

		values := []T{first}

		for {
			_, afterSep, err := sep(next)
			if err != nil {
				break
			}

			v, after, err := p(afterSep)
			if err != nil {
				break
			}

			values = append(values, v)
			next = after
		}

		return values, next, nil
	}
}

// Peek runs p without consuming any input.
func Peek[T any](p Func[T]) Func[T] {
	return func(c Cursor) (T, Cursor, error) {
		v, _, err := p(c)
		return v, c, err
	}
}

// Not succeeds without consuming input when p fails.
func Not[T any](p Func[T]) Func[struct{}] {
	return func(c Cursor) (struct{}, Cursor, error) {
		if _, _, err := p(c); err == nil {
			return struct{}{}, c, c.MakeError("unexpected match")
		}

		return struct{}{}, c, nil
	}
}

// Map transforms the value produced by p.
func Map[T, U any](p Func[T], f func(T) U) Func[U] {
	return func(c Cursor) (U, Cursor, error) {
		v, next, err := p(c)
		if err != nil {
			var zero U
			return zero, c, err
		}

		return f(v), next, nil
	}
}

// MapErr transforms the value produced by p with a function that may fail. The failure is reported at the start of
// the value with the given kind.
func MapErr[T, U any](p Func[T], kind Kind, f func(T) (U, error)) Func[U] {
	return func(c Cursor) (U, Cursor, error) {
		var zero U

		v, next, err := p(c)
		if err != nil {
			return zero, c, err
		}

		u, err := f(v)
		if err != nil {
			return zero, c, c.WrapError(kind, err, err.Error())
		}

		return u, next, nil
	}
}

// Recognize returns the input bytes consumed by p instead of its value.
func Recognize[T any](p Func[T]) Func[[]byte] {
	return func(c Cursor) ([]byte, Cursor, error) {
		_, next, err := p(c)
		if err != nil {
			return nil, c, err
		}

		return next.Since(c), next, nil
	}
}

// Preceded parses first then p and keeps the value of p.
func Preceded[S, T any](first Func[S], p Func[T]) Func[T] {
	return func(c Cursor) (T, Cursor, error) {
		var zero T

		_, next, err := first(c)
		if err != nil {
			return zero, c, err
		}

		v, next, err := p(next)
		if err != nil {
			return zero, c, err
		}

		return v, next, nil
	}
}

// Terminated parses p then last and keeps the value of p.
func Terminated[T, S any](p Func[T], last Func[S]) Func[T] {
	return func(c Cursor) (T, Cursor, error) {
		var zero T

		v, next, err := p(c)
		if err != nil {
			return zero, c, err
		}

		if _, next, err = last(next); err != nil {
			return zero, c, err
		}

		return v, next, nil
	}
}

// Delimited parses open, p and close and keeps the value of p.
func Delimited[O, T, C any](open Func[O], p Func[T], close Func[C]) Func[T] {
	return Preceded(open, Terminated(p, close))
}

// Byte matches a single byte.
func Byte(b byte) Func[byte] {
	return func(c Cursor) (byte, Cursor, error) {
		next, ok := c.MatchesByte(b)
		if !ok {
			return 0, c, c.MakeError(fmt.Sprintf("expected '%c'", b))
		}

		return b, next, nil
	}
}

// Satisfy matches a single byte accepted by f.
func Satisfy(f func(b byte) bool, what string) Func[byte] {
	return func(c Cursor) (byte, Cursor, error) {
		v, ok := c.Peek()
		if !ok || !f(v) {
			return 0, c, c.MakeError("expected " + what)
		}

		return v, c.Advance(1), nil
	}
}

// Tag matches an exact byte sequence.
func Tag(s string) Func[[]byte] {
	return func(c Cursor) ([]byte, Cursor, error) {
		next, err := c.ConsumeBytes([]byte(s)...)
		if err != nil {
			return nil, c, err
		}

		return next.Since(c), next, nil
	}
}

// TagFold matches a byte sequence ignoring ASCII case.
func TagFold(s string) Func[[]byte] {
	return func(c Cursor) ([]byte, Cursor, error) {
		next, ok := c.MatchesFold(s)
		if !ok {
			return nil, c, c.MakeError(fmt.Sprintf("expected %q", s))
		}

		return next.Since(c), next, nil
	}
}

// TakeWhile matches a run of bytes accepted by f, at least min long.
func TakeWhile(f func(b byte) bool, min int, what string) Func[[]byte] {
	return func(c Cursor) ([]byte, Cursor, error) {
		v, next := c.CollectBytesWhile(f)
		if len(v) < min {
			return nil, c, next.MakeError("expected " + what)
		}

		return v, next, nil
	}
}

// TakeWhileMN matches between min and max bytes accepted by f.
func TakeWhileMN(f func(b byte) bool, min, max int, what string) Func[[]byte] {
	return func(c Cursor) ([]byte, Cursor, error) {
		n := 0

		for n < max {
			v, ok := c.PeekAt(n)
			if !ok || !f(v) {
				break
			}
			n++
		}

		if n < min {
			return nil, c, c.Advance(n).MakeError("expected " + what)
		}

		next := c.Advance(n)

		return next.Since(c), next, nil
	}
}
