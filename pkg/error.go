package pkg

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Error is a chain of errors ordered from innermost to outermost.
//
// Every error in the chain is reachable through [errors.Is] and [errors.As]
// because Error implements Unwrap() []error.
type Error []error

// Stage errors. Every failed run returns exactly one of these in its chain,
// which identifies the pipeline stage that stopped the run.
var (
	// ErrConfig is returned when a required run setting is missing or invalid.
	ErrConfig = MakeErrorf("configuration error")

	// ErrDevice is returned when the device bridge fails to list or pull
	// profiles.
	ErrDevice = MakeErrorf("device communication error")

	// ErrSelection is returned when no profile could be selected, either
	// because none exist, the listing could not be parsed, or the user
	// aborted the prompt.
	ErrSelection = MakeErrorf("selection error")

	// ErrTransfer is returned when downloading a bundle artifact fails.
	ErrTransfer = MakeErrorf("transfer error")

	// ErrTransform is returned when the trace transformer rejects its inputs.
	ErrTransform = MakeErrorf("transformation error")

	// ErrWriteOutput is returned when the converted trace cannot be written.
	ErrWriteOutput = MakeErrorf("write output error")
)

// MakeError constructs an Error from the given errors in the order they are
// provided. Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, err)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the messages of the chain with ": ".
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range e {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap returns a new chain with the receiver followed by err.
// The receiver is never modified, so sentinels can be wrapped freely.
func (e Error) Wrap(err ...error) Error {
	return slices.Concat(e, MakeError(err...))
}

// Wrapf is like [Error.Wrap] with a formatted cause.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors contained in the chain.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver. Error is a slice and therefore not comparable, so [errors.Is]
// relies on this method to match wrapped sentinels.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if !sameError(e[i], t[i]) {
			return false
		}
	}

	return true
}

func sameError(a, b error) bool {
	ae, aok := a.(Error)
	be, bok := b.(Error)

	if aok || bok {
		return aok && bok && len(ae) == len(be) && ae.Is(be)
	}

	if a == nil || b == nil {
		return a == b
	}

	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}

	return a == b
}
