package sbomkit

import (
	"errors"
	"strings"
)

// Error describes a failure in decoding, merging, or enriching a document.
//
// Op names the function that failed, Kind classifies the failure for callers
// deciding whether to retry, and Inner holds the underlying cause.
//
// An Error is created once, at the point the failure is observed. Callers up
// the stack add context with [fmt.Errorf] and "%w", so [errors.As] finds the
// original.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrInvalid,
		ErrInternal,
		ErrTransient,
		ErrPermanent:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	b.WriteString(e.Message)
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is reports whether kind is e's Kind.
func (e *Error) Is(kind error) bool {
	return errors.Is(e.Kind, kind)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind classifies an [Error]. Kinds compare with [errors.Is].
//
// Failures that fit no other kind are ErrInternal.
type ErrorKind string

var (
	ErrInvalid   = ErrorKind("invalid")   // bad argument or malformed document
	ErrInternal  = ErrorKind("internal")  // bug or local I/O failure
	ErrTransient = ErrorKind("transient") // upstream hiccup; retrying may help
	ErrPermanent = ErrorKind("permanent") // retrying will not help
)

// Error implements error.
func (e ErrorKind) Error() string {
	return string(e)
}
