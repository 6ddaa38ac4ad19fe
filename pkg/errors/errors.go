// Package errors provides structured error types for depgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the store, codecs, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every code describes a recoverable input error except INTERNAL_ERROR. Input
// errors never leave the graph partially modified: the caller may fix the input
// and retry.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownDependency, "unknown dependency %q", id)
//	if errors.Is(err, errors.ErrCodeUnknownDependency) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedInput, origErr, "line %d", line)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Task and dependency validation errors
	ErrCodeEmptyText         Code = "EMPTY_TEXT"
	ErrCodeUnknownDependency Code = "UNKNOWN_DEPENDENCY"
	ErrCodeUnknownTask       Code = "UNKNOWN_TASK"
	ErrCodeDuplicateID       Code = "DUPLICATE_ID"
	ErrCodeCycleDetected     Code = "CYCLE_DETECTED"
	ErrCodeSelfDependency    Code = "SELF_DEPENDENCY"

	// Document and input errors
	ErrCodeMalformedInput Code = "MALFORMED_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

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

// summaries holds the headline shown to users for each code.
var summaries = map[Code]string{
	ErrCodeEmptyText:         "Please enter a task name",
	ErrCodeUnknownDependency: "A dependency refers to a task that does not exist",
	ErrCodeUnknownTask:       "Task not found",
	ErrCodeDuplicateID:       "The file contains two tasks with the same id",
	ErrCodeCycleDetected:     "That dependency would create a cycle",
	ErrCodeSelfDependency:    "A task cannot depend on itself",
	ErrCodeMalformedInput:    "The file could not be read",
	ErrCodeInvalidFormat:     "Unsupported file format",
	ErrCodeInvalidPath:       "Invalid path",
	ErrCodeInvalidConfig:     "Invalid configuration",
	ErrCodeNotFound:          "Not found",
	ErrCodeInternal:          "Something went wrong",
}

// Summary returns the fixed user-facing headline for code, or "" if the code
// is unknown.
func Summary(code Code) string {
	return summaries[code]
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the code's headline followed by the detail message.
// EMPTY_TEXT yields exactly "Please enter a task name".
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	headline := summaries[e.Code]
	switch {
	case headline == "":
		return e.Message
	case e.Code == ErrCodeEmptyText || e.Message == "":
		return headline
	default:
		return headline + ": " + e.Message
	}
}
