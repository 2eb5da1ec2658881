package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a quotebook error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrMalformedReference ErrorCode = "MALFORMED_REFERENCE" // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrCapturePending     ErrorCode = "CAPTURE_PENDING"     // 409
	ErrCaptureWaiting     ErrorCode = "CAPTURE_WAITING"     // 409
	ErrSizeViolation      ErrorCode = "SIZE_VIOLATION"      // 413
	ErrIntegrityFailure   ErrorCode = "INTEGRITY_FAILURE"   // 422
	ErrTransientIO        ErrorCode = "TRANSIENT_IO"        // 503
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// QuoteError represents a structured error with code, status, and details.
type QuoteError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *QuoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *QuoteError {
	return &QuoteError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewMalformedReference creates a 400 error when a quoted message does not
// resolve to a record id.
func NewMalformedReference(content string) *QuoteError {
	return &QuoteError{
		Code:    ErrMalformedReference,
		Status:  400,
		Message: "quoted message does not reference a quote",
		Details: map[string]any{"content": content},
	}
}

// NewNotFound creates a 404 error for when a quote cannot be found.
func NewNotFound(identifier string) *QuoteError {
	return &QuoteError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("quote not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewCapturePending creates a 409 error when the requester already has an
// attachment being ingested.
func NewCapturePending(scope, user string) *QuoteError {
	return &QuoteError{
		Code:    ErrCapturePending,
		Status:  409,
		Message: "a previous capture is still being processed",
		Details: map[string]any{"scope": scope, "user": user},
	}
}

// NewCaptureWaiting creates a 409 error when the requester already has a
// capture waiting for an attachment.
func NewCaptureWaiting(scope, user string) *QuoteError {
	return &QuoteError{
		Code:    ErrCaptureWaiting,
		Status:  409,
		Message: "a previous capture is still waiting for an image",
		Details: map[string]any{"scope": scope, "user": user},
	}
}

// NewSizeViolation creates a 413 error when a downloaded file exceeds the ceiling.
func NewSizeViolation(id int64, max, actual int64) *QuoteError {
	return &QuoteError{
		Code:    ErrSizeViolation,
		Status:  413,
		Message: fmt.Sprintf("file for quote %d exceeds maximum size: %d bytes (max %d)", id, actual, max),
		Details: map[string]any{"quote_id": id, "max_bytes": max, "actual_bytes": actual},
	}
}

// NewIntegrityFailure creates a 422 error when a stored file is missing or undersized.
func NewIntegrityFailure(path string, reason string) *QuoteError {
	return &QuoteError{
		Code:    ErrIntegrityFailure,
		Status:  422,
		Message: fmt.Sprintf("file %s failed integrity check: %s", path, reason),
		Details: map[string]any{"path": path},
	}
}

// NewTransientIO creates a 503 error for a single failed network or stream operation.
func NewTransientIO(err error) *QuoteError {
	msg := "transient I/O failure"
	if err != nil {
		msg = err.Error()
	}
	return &QuoteError{
		Code:    ErrTransientIO,
		Status:  503,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The underlying error is kept in Details for logging, not in Message.
func NewInternal(err error) *QuoteError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &QuoteError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a QuoteError with the given code.
func Is(err error, code ErrorCode) bool {
	var qErr *QuoteError
	if stderrors.As(err, &qErr) {
		return qErr.Code == code
	}
	return false
}

// As returns the QuoteError carried by err, if any.
func As(err error) (*QuoteError, bool) {
	var qErr *QuoteError
	if stderrors.As(err, &qErr) {
		return qErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP-like status carried by err, or 500.
func StatusOf(err error) int {
	var qErr *QuoteError
	if stderrors.As(err, &qErr) {
		return qErr.Status
	}
	return 500
}
