// Package errors provides structured error types for the ladder engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI, and preview server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly status messages for rejected edits
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - STRUCTURAL_*: Branch-balance and geometry invariant failures
//   - INVALID_*: Coordinate and input validation failures
//   - NOT_FOUND_*: Rung/branch/element lookup misses
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeBranchMismatch, "branch id mismatch: %s != %s", want, got)
//	if errors.Is(err, errors.ErrCodeBranchMismatch) {
//	    // Handle invariant failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "layout rung %d", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural invariant failures. These indicate a malformed element
	// sequence or corrupted geometry and always abort the current pass.
	ErrCodeBranchMismatch    Code = "STRUCTURAL_BRANCH_MISMATCH"
	ErrCodeBranchEndOrphan   Code = "STRUCTURAL_BRANCH_END_ORPHAN"
	ErrCodeBranchUnbalanced  Code = "STRUCTURAL_BRANCH_UNBALANCED"
	ErrCodeDanglingBranchRef Code = "STRUCTURAL_DANGLING_BRANCH"
	ErrCodeUnknownElement    Code = "STRUCTURAL_UNKNOWN_ELEMENT"

	// Coordinate and input validation errors
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidAnchor     Code = "INVALID_ANCHOR"
	ErrCodeInvalidPosition   Code = "INVALID_POSITION"
	ErrCodeInvalidRange      Code = "INVALID_RANGE"
	ErrCodeDuplicateDrop     Code = "INVALID_DUPLICATE_DROP"

	// Resource not found errors
	ErrCodeRungNotFound    Code = "NOT_FOUND_RUNG"
	ErrCodeBranchNotFound  Code = "NOT_FOUND_BRANCH"
	ErrCodeElementNotFound Code = "NOT_FOUND_ELEMENT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsStructural reports whether err is any structural-invariant failure.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeBranchMismatch, ErrCodeBranchEndOrphan, ErrCodeBranchUnbalanced,
		ErrCodeDanglingBranchRef, ErrCodeUnknownElement:
		return true
	}
	return false
}

// IsNotFound reports whether err is any lookup miss.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeRungNotFound, ErrCodeBranchNotFound, ErrCodeElementNotFound:
		return true
	}
	return false
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
