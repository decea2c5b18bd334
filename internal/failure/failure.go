// Package failure defines the typed error kinds the executors and the runner
// report. Every expected failure carries a stable kind so callers can branch
// on category instead of matching message text.
package failure

import (
	"errors"
	"fmt"
)

// Kind is a stable failure category code.
type Kind string

const (
	SourceMissing     Kind = "SOURCE_MISSING"
	PrivilegeRequired Kind = "PRIVILEGE_REQUIRED"
	ConflictingLink   Kind = "CONFLICTING_LINK"
	ConflictingEntry  Kind = "CONFLICTING_ENTRY"
	ValueConflict     Kind = "VALUE_CONFLICT"
	UnknownAction     Kind = "UNKNOWN_ACTION"
	IO                Kind = "IO"
)

// Failure is an error with a kind, a message, and an optional wrapped cause.
type Failure struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (f *Failure) Error() string {
	if f.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", f.Kind, f.Message, f.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Wrapped
}

// Is matches two Failures on kind alone, so
// errors.Is(err, &Failure{Kind: SourceMissing}) works as a category check.
func (f *Failure) Is(target error) bool {
	var t *Failure
	if !errors.As(target, &t) {
		return false
	}
	return f.Kind == t.Kind
}

// New returns a Failure of the given kind.
func New(kind Kind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Newf returns a Failure of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind and message. Returns nil when err is nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Failure{Kind: kind, Message: message, Wrapped: err}
}

// Wrapf annotates err with a kind and a formatted message. Returns nil when
// err is nil.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// KindOf returns the kind carried by err. A nil error has no kind; a non-nil
// error that is not a Failure counts as IO.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return IO
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
