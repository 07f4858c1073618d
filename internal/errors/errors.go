package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an IntelliClip error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrAIBlocked       ErrorCode = "AI_BLOCKED"        // 422
	ErrCancelled       ErrorCode = "CANCELLED"         // 499
	ErrStorage         ErrorCode = "STORAGE"           // 500
	ErrInternal        ErrorCode = "INTERNAL"          // 500
	ErrAIFailed        ErrorCode = "AI_FAILED"         // 502
	ErrAINotConfigured ErrorCode = "AI_NOT_CONFIGURED" // 503
)

// SnipError represents a structured error with code, status, and details.
type SnipError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// cause is the wrapped error, if any. Never exposed to clients.
	cause error
}

// Error implements the error interface.
func (e *SnipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SnipError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SnipError {
	return &SnipError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a snippet cannot be found.
func NewNotFound(id int64) *SnipError {
	return &SnipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("snippet not found: %d", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *SnipError {
	return &SnipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewAIBlocked creates a 422 error for prompts rejected by the provider's
// safety policy. feedback carries the provider-supplied detail.
func NewAIBlocked(reason string, feedback map[string]any) *SnipError {
	msg := "AI prompt blocked"
	if reason != "" {
		msg = fmt.Sprintf("AI prompt feedback: %s", reason)
	}
	return &SnipError{
		Code:    ErrAIBlocked,
		Status:  422,
		Message: msg,
		Details: feedback,
	}
}

// NewCancelled creates a 499 error when an operation was cancelled.
func NewCancelled(op string) *SnipError {
	return &SnipError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewStorage creates a 500 error for unrecoverable storage faults.
func NewStorage(err error) *SnipError {
	msg := "storage error"
	if err != nil {
		msg = err.Error()
	}
	return &SnipError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SnipError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SnipError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// NewAIFailed creates a 502 error when the summarization provider fails.
func NewAIFailed(err error) *SnipError {
	msg := "unknown AI generation error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &SnipError{
		Code:    ErrAIFailed,
		Status:  502,
		Message: msg,
		cause:   err,
	}
}

// NewAINotConfigured creates a 503 error when no summarizer is configured.
func NewAINotConfigured() *SnipError {
	return &SnipError{
		Code:    ErrAINotConfigured,
		Status:  503,
		Message: "AI API key not configured",
	}
}

// Public reports whether Message and Details may be shown to clients.
// INTERNAL and STORAGE messages can carry SQL text or file paths.
func (e *SnipError) Public() bool {
	return e.Code != ErrInternal && e.Code != ErrStorage
}

// PublicMessage returns Message for public codes and a generic text
// otherwise.
func (e *SnipError) PublicMessage() string {
	switch {
	case e.Public():
		return e.Message
	case e.Code == ErrStorage:
		return "a storage error occurred"
	default:
		return "an internal error occurred"
	}
}

// Is checks if err (or anything it wraps) is a SnipError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SnipError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// As finds the first SnipError in err's chain.
func As(err error) (*SnipError, bool) {
	var sErr *SnipError
	if stderrors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}

// Internal returns err unchanged if it is already a SnipError, otherwise
// wraps it as INTERNAL.
func Internal(err error) *SnipError {
	if sErr, ok := As(err); ok {
		return sErr
	}
	return NewInternal(err)
}
