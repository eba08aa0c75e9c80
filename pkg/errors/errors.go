// Package errors provides structured error types for the fourcolor engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP facade
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map onto the failure classes of the coloring engine:
//   - INVALID_*: unknown ids and malformed input (reported, never fatal)
//   - DUPLICATE_EDGE: an edge between the pair already exists
//   - STRUCTURAL_INCONSISTENCY: malformed rotation system (recovered locally)
//   - KEMPE_EXHAUSTION: no Kempe swap frees a color (unrecoverable)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id)
//	if errors.Is(err, errors.ErrCodeInvalidReference) {
//	    // Handle lookup failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "load %s", path)
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidScript    Code = "INVALID_SCRIPT"

	// Structural errors
	ErrCodeDuplicateEdge Code = "DUPLICATE_EDGE"
	ErrCodeFixedElement  Code = "FIXED_ELEMENT"
	ErrCodeProtectedZone Code = "PROTECTED_ZONE"
	ErrCodeEnclosed      Code = "ENCLOSED"

	// Embedding and coloring errors
	ErrCodeStructuralInconsistency Code = "STRUCTURAL_INCONSISTENCY"
	ErrCodeKempeExhaustion         Code = "KEMPE_EXHAUSTION"

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

// ExhaustionError carries the diagnostic state of a failed Kempe resolution.
// It always unwraps to an *Error with ErrCodeKempeExhaustion.
type ExhaustionError struct {
	NodeID int   // Overflow node that could not be recolored
	Pairs  int   // Number of color pairs tried
	Colors []int // Distinct neighbor colors seen
}

// Error implements the error interface.
func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("kempe exhaustion at node %d: %d color pairs tried over %v", e.NodeID, e.Pairs, e.Colors)
}

// Unwrap exposes the coded form so Is(err, ErrCodeKempeExhaustion) holds.
func (e *ExhaustionError) Unwrap() error {
	return New(ErrCodeKempeExhaustion, "no Kempe chain swap frees a color for node %d", e.NodeID)
}
