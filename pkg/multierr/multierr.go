package multierr

import (
	"bytes"
	"errors"
	"fmt"
)

// Error collects multiple errors into one. The zero value is usable:
//
//	var e Error
//	e.Append(doThing())
//	return e.ErrOrNil()
type Error []error

func (e Error) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"

	case 1:
		return e[0].Error()

	default:
		buf := new(bytes.Buffer)
		fmt.Fprintf(buf, "%d errors occurred:", len(e))
		for _, err := range e {
			fmt.Fprintf(buf, `
	* %v`, err)
		}
		return buf.String()
	}
}

// Append mutates e, adding err. No-ops if err is nil.
func (e *Error) Append(err error) {
	switch {
	case e == nil:

	case err == nil:

	case *e == nil:
		*e = Error{err}

	default:
		*e = append(*e, err)
	}
}

// ErrOrNil converts e into a plain error, avoiding the typed-nil trap where
// (Error)(nil) != nil. A single-element Error unwraps to its sole member.
func (e Error) ErrOrNil() error {
	switch len(e) {
	case 0:
		return nil

	case 1:
		return e[0]

	default:
		return e
	}
}

// Unwrap implements the interface used in [errors.Unwrap]
func (e Error) Unwrap() error {
	switch len(e) {
	case 0:
		return nil

	case 1:
		return e[0]

	default:
		return e[1:]
	}
}

// Is implements the interface used in [errors.Is] by iterating through the
// members, returning true on the first match.
func (e Error) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// As implements the interface used in [errors.As] by iterating through the
// members, returning true on the first match.
func (e Error) As(target interface{}) bool {
	for _, err := range e {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
