// Package errors defines the error taxonomy shared by every stage of the
// compiler: tokenization, AST construction, simplification, differentiation
// and both emission backends. The host only ever observes the serialized
// string (Error()), so the richer fields here (Kind, StackTrace, Unwrap)
// exist only for Go callers inside fxc.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies which of the four failure categories spec.md §7 names.
type Kind string

const (
	// ParseErrorKind covers malformed LaTeX, unknown macros, missing braces.
	ParseErrorKind Kind = "ParseError"
	// MathErrorKind covers semantic violations of the math model.
	MathErrorKind Kind = "MathError"
	// EmptyErrorKind is the internal "no tokens left" sentinel.
	EmptyErrorKind Kind = "EmptyError"
	// IoErrorKind covers state-consistency problems (unknown names, overflow).
	IoErrorKind Kind = "IoError"
)

// Error is the single error type every package in fxc returns. It carries
// a stack trace captured at the point of construction (via
// github.com/pkg/errors), reachable through StackTrace or %+v
// formatting, without that detail ever reaching the host's serialized
// message, which is just Error().
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the stack-trace-carrying cause for errors.As/errors.Is.
func (e *Error) Unwrap() error {
	return e.cause
}

// StackTrace delegates to the wrapped pkg/errors cause, letting %+v
// formatting on an *Error print an origin stack in debug tooling.
func (e *Error) StackTrace() pkgerrors.StackTrace {
	type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

func newError(kind Kind, msg string) *Error {
	return &Error{
		Kind:    kind,
		Message: msg,
		cause:   pkgerrors.New(msg),
	}
}

// Parse builds a ParseError with a formatted message.
func Parse(format string, args ...interface{}) *Error {
	return newError(ParseErrorKind, fmt.Sprintf(format, args...))
}

// Math builds a MathError with a formatted message.
func Math(format string, args ...interface{}) *Error {
	return newError(MathErrorKind, fmt.Sprintf(format, args...))
}

// IO builds an IoError with a formatted message.
func IO(format string, args ...interface{}) *Error {
	return newError(IoErrorKind, fmt.Sprintf(format, args...))
}

// Empty is the shared EmptyError sentinel. BuildTerm relies on IsEmpty,
// which matches any *Error of EmptyErrorKind, to distinguish "ran out of
// factors" from a genuine downstream failure.
var Empty = &Error{Kind: EmptyErrorKind, Message: "no tokens left"}

// IsEmpty reports whether err is the EmptyError sentinel.
func IsEmpty(err error) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == EmptyErrorKind
}

// Is reports whether err is a compiler Error of the given kind.
func Is(err error, kind Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}
