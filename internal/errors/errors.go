// Package errors provides structured error types for pyorder.
//
// Every failure is scoped to a single file: the batch driver records the
// error against the file's result and moves on. Codes let the driver and
// tests tell the failure classes apart without matching message text.
//
//	err := errors.New(errors.ParseFailure, "%s: not valid Python", path)
//	if errors.Is(err, errors.ParseFailure) {
//	    // skip the file
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// ParseFailure means the source is not syntactically valid.
	ParseFailure Code = "PARSE_FAILURE"
	// UnresolvedDependency means a base class or anchor could not be located
	// in scope. It is reported, never fatal.
	UnresolvedDependency Code = "UNRESOLVED_DEPENDENCY"
	// RenderFailure means formatted output did not re-parse to an equivalent
	// declaration sequence. The file is not written.
	RenderFailure Code = "RENDER_FAILURE"
	// IOFailure covers reading and writing files.
	IOFailure Code = "IO_FAILURE"
	// InvalidConfig means configuration could not be loaded or validated.
	InvalidConfig Code = "INVALID_CONFIG"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
