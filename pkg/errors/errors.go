// Package errors provides structured error types for toolrack.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Separation of fatal input and validation failures
//   - Error wrapping with context preservation
//
// # Error Categories
//
// Codes fall into two fatal categories that callers usually branch on:
//   - Input errors: the catalog or parameter source could not be read
//     (malformed files, missing columns, nothing enabled).
//   - Validation errors: the inputs were read but describe a part that cannot
//     be built (duplicate cells, bad diameters, tight spacing, mount offsets).
//
// Both categories are raised before the modeling backend is touched. Non-fatal
// geometry problems are not errors; see the build package's Warning type.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateCell, "duplicate row/col (%d, %d)", r, c).
//	    With("tool", a.Name).With("other", b.Name)
//	if errors.IsValidation(err) {
//	    // report and stop
//	}
package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidCatalog Code = "INVALID_CATALOG"
	ErrCodeInvalidParams  Code = "INVALID_PARAMS"
	ErrCodeNoTools        Code = "NO_TOOLS"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Validation errors
	ErrCodeInvalidTool   Code = "INVALID_TOOL"
	ErrCodeDuplicateCell Code = "DUPLICATE_CELL"
	ErrCodeSpacing       Code = "SPACING"
	ErrCodeMountOffset   Code = "MOUNT_OFFSET"
	ErrCodeBaseThickness Code = "BASE_THICKNESS"
	ErrCodeParamRange    Code = "PARAM_RANGE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Modeling backend errors
	ErrCodeBackend Code = "BACKEND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var inputCodes = map[Code]bool{
	ErrCodeInvalidInput:   true,
	ErrCodeInvalidCatalog: true,
	ErrCodeInvalidParams:  true,
	ErrCodeNoTools:        true,
	ErrCodeFileNotFound:   true,
}

var validationCodes = map[Code]bool{
	ErrCodeInvalidTool:   true,
	ErrCodeDuplicateCell: true,
	ErrCodeSpacing:       true,
	ErrCodeMountOffset:   true,
	ErrCodeBaseThickness: true,
	ErrCodeParamRange:    true,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code           // Machine-readable error code
	Message string         // Human-readable message
	Details map[string]any // Offending names and values (optional)
	Cause   error          // Underlying error (optional)
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

// With returns a copy of e carrying an additional detail value.
func (e *Error) With(key string, value any) *Error {
	out := *e
	out.Details = make(map[string]any, len(e.Details)+1)
	maps.Copy(out.Details, e.Details)
	out.Details[key] = value
	return &out
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

// GetDetails returns the details attached to the first *Error in the chain.
func GetDetails(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// IsInput reports whether err is a fatal input error.
func IsInput(err error) bool {
	return inputCodes[GetCode(err)]
}

// IsValidation reports whether err is a fatal validation error.
func IsValidation(err error) bool {
	return validationCodes[GetCode(err)]
}

// IsFatal reports whether err belongs to either fatal pre-build category.
func IsFatal(err error) bool {
	return IsInput(err) || IsValidation(err)
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
