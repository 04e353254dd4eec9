// Package errors provides structured error types for forcelayout.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
//   - MALFORMED_INPUT: the graph cannot be decoded into node and link records
//   - UNRESOLVED_LINK_ENDPOINT: a link names a node that does not exist
//   - INVALID_CONFIG: layout options or a config file failed validation
//   - FILE_NOT_FOUND, INTERNAL_ERROR, UNSUPPORTED
//
// Degenerate geometry (coincident nodes, zero-length links) is resolved inside
// the simulation and never produces an error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnresolvedLink, "link %d: unknown target %q", i, id)
//	if errors.Is(err, errors.ErrCodeUnresolvedLink) {
//	    // Handle structural input error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedInput, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeMalformedInput Code = "MALFORMED_INPUT"
	ErrCodeUnresolvedLink Code = "UNRESOLVED_LINK_ENDPOINT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status returned by the layout API.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeMalformedInput, ErrCodeInvalidConfig:
		return 400
	case ErrCodeUnresolvedLink:
		return 422
	case ErrCodeFileNotFound:
		return 404
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
