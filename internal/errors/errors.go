package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a CleanSheet error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrInvalidOptions  ErrorCode = "INVALID_OPTIONS"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrConflict        ErrorCode = "CONFLICT"         // 409
	ErrTextTooLarge    ErrorCode = "TEXT_TOO_LARGE"   // 413
	ErrMalformedImport ErrorCode = "MALFORMED_IMPORT" // 422
	ErrCancelled       ErrorCode = "CANCELLED"        // 499
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// CleanSheetError is a structured error with code, status, and details.
type CleanSheetError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CleanSheetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidOptions creates a 400 error for rewrite options that fail
// validation. fields maps each offending option to the rule it broke.
func NewInvalidOptions(fields map[string]string) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrInvalidOptions,
		Status:  400,
		Message: fmt.Sprintf("invalid rewrite options: %d field(s) failed validation", len(fields)),
		Details: map[string]any{"fields": fields},
	}
}

// NewNotFound creates a 404 error for a missing style example.
func NewNotFound(id string) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("style example not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error for id collisions.
func NewConflict(msg string) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewTextTooLarge creates a 413 error when text exceeds a size limit.
func NewTextTooLarge(field string, max, actual int) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrTextTooLarge,
		Status:  413,
		Message: fmt.Sprintf("%s exceeds maximum size: %d chars (max %d)", field, actual, max),
		Details: map[string]any{"field": field, "max_chars": max, "actual_chars": actual},
	}
}

// NewMalformedImport creates a 422 error for an unreadable import file.
func NewMalformedImport(line int, msg string) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrMalformedImport,
		Status:  422,
		Message: fmt.Sprintf("malformed import at line %d: %s", line, msg),
		Details: map[string]any{"line": line},
	}
}

// NewCancelled creates a 499 error when the caller gave up.
func NewCancelled(op string) *CleanSheetError {
	return &CleanSheetError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CleanSheetError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CleanSheetError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is reports whether err is, or wraps, a CleanSheetError with the given code.
func Is(err error, code ErrorCode) bool {
	var csErr *CleanSheetError
	if stderrors.As(err, &csErr) {
		return csErr.Code == code
	}
	return false
}
