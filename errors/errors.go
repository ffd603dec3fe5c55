// Package errors provides error handling for markgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//
// On top of that it defines the error kinds a generation run can fail with.
// Every error produced by markgen is marked with exactly one kind, so callers
// can branch with errors.Is regardless of how much context was wrapped on top:
//
//	if errors.Is(err, errors.ErrParse) {
//	    // malformed source file
//	}
//
// I/O errors are never marked; they pass through so that
// errors.Is(err, fs.ErrNotExist) keeps working.
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Error kinds. Use these with errors.Is().
var (
	// ErrParse indicates malformed source text, a number that fits no
	// supported width, or a mapping key that is not a string
	ErrParse = New("parse error")

	// ErrShape indicates a value of the wrong kind where a specific kind is required
	ErrShape = New("unexpected value kind")

	// ErrEmptySource indicates a values table or variant set with no entries
	ErrEmptySource = New("empty source")

	// ErrInvalidName indicates a type, field or variant name that is not a
	// valid identifier in the target language
	ErrInvalidName = New("invalid identifier")

	// ErrIncompatibleShape indicates sibling values that cannot share one type
	ErrIncompatibleShape = New("incompatible sibling values")

	// ErrUnsupported indicates input or output the selected format or
	// language cannot express
	ErrUnsupported = New("unsupported")
)

// ShapeError reports a value whose kind is not the one required.
type ShapeError struct {
	Expected string
	Actual   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("expected value to be %s but found `%s` instead", e.Expected, e.Actual)
}

// NameError reports an identifier the target language rejects.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid identifier %q", e.Name)
	}
	return fmt.Sprintf("invalid identifier %q: %s", e.Name, e.Reason)
}

// NewParseError creates a parse error with a formatted message
func NewParseError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrParse)
}

// WrapParse marks a decoder error as a parse error and adds context
func WrapParse(err error, context string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, context), ErrParse)
}

// NewShapeError creates a shape error carrying the kind tag actually found
func NewShapeError(expected, actual string) error {
	return Mark(WithStack(&ShapeError{Expected: expected, Actual: actual}), ErrShape)
}

// NewEmptySourceError creates an empty-source error with a formatted message
func NewEmptySourceError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrEmptySource)
}

// NewNameError creates a naming error for the exact offending string
func NewNameError(name, reason string) error {
	return Mark(WithStack(&NameError{Name: name, Reason: reason}), ErrInvalidName)
}

// NewIncompatibleShapeError creates an incompatible-shape error with a formatted message
func NewIncompatibleShapeError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrIncompatibleShape)
}

// NewUnsupportedError creates an unsupported error with a formatted message
func NewUnsupportedError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrUnsupported)
}

// Kind returns the name of the error kind err is marked with, or "" for
// unmarked errors such as I/O failures.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrParse):
		return "parse"
	case Is(err, ErrShape):
		return "shape"
	case Is(err, ErrEmptySource):
		return "empty_source"
	case Is(err, ErrInvalidName):
		return "invalid_name"
	case Is(err, ErrIncompatibleShape):
		return "incompatible_shape"
	case Is(err, ErrUnsupported):
		return "unsupported"
	default:
		return ""
	}
}
