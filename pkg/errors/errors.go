// Package errors provides structured error types for the arlequin application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - CONFIG_*: configuration failures (unsupported context length,
//     unknown symbol, malformed category window)
//   - DATA_MISMATCH_*: keys that disagree with a canonical axis order
//   - SHAPE_*: payload or matrix dimensions that disagree with the layout
//   - INVALID_*, NOT_FOUND_*, INTERNAL_*: surface-level errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfigContextLength, "unsupported context length: %d", n)
//	if errors.Is(err, errors.ErrCodeConfigContextLength) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "failed to load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeConfigContextLength Code = "CONFIG_CONTEXT_LENGTH"
	ErrCodeConfigSymbol        Code = "CONFIG_SYMBOL"
	ErrCodeConfigWindow        Code = "CONFIG_WINDOW"
	ErrCodeConfigBounds        Code = "CONFIG_BOUNDS"
	ErrCodeConfigGrid          Code = "CONFIG_GRID"

	// Axis-order / key mismatch errors
	ErrCodeDataMismatchKey       Code = "DATA_MISMATCH_KEY"
	ErrCodeDataMismatchDuplicate Code = "DATA_MISMATCH_DUPLICATE"

	// Dimension errors
	ErrCodeShapePayload Code = "SHAPE_PAYLOAD"
	ErrCodeShapeMatrix  Code = "SHAPE_MATRIX"
	ErrCodeShapeTable   Code = "SHAPE_TABLE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidFigure Code = "INVALID_FIGURE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// IsConfig reports whether err is any configuration error.
func IsConfig(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfigContextLength, ErrCodeConfigSymbol, ErrCodeConfigWindow,
		ErrCodeConfigBounds, ErrCodeConfigGrid:
		return true
	}
	return false
}

// IsDataMismatch reports whether err is a key/order mismatch error.
func IsDataMismatch(err error) bool {
	switch GetCode(err) {
	case ErrCodeDataMismatchKey, ErrCodeDataMismatchDuplicate:
		return true
	}
	return false
}

// IsShape reports whether err is a dimension error.
func IsShape(err error) bool {
	switch GetCode(err) {
	case ErrCodeShapePayload, ErrCodeShapeMatrix, ErrCodeShapeTable:
		return true
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
