// Package errors provides the error taxonomy shared by the search, the
// reconciler and the admin API, and its translation to HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidArgument    ErrorCode = "INVALID_ARGUMENT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// Class sentinels. Package level errors wrap one of these with %w so callers
// can classify with errors.Is without knowing the concrete sentinel.
var (
	ErrInvalidArgument    = stderrors.New(string(ErrCodeInvalidArgument))
	ErrNotFound           = stderrors.New(string(ErrCodeNotFound))
	ErrConflict           = stderrors.New(string(ErrCodeConflict))
	ErrStorageUnavailable = stderrors.New(string(ErrCodeStorageUnavailable))
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is(stdErr, ErrNotFound) hold for a NOT_FOUND StandardError.
func (e *StandardError) Is(target error) bool {
	if t, ok := target.(*StandardError); ok {
		return t.Code == e.Code
	}
	return target == sentinelFor(e.Code)
}

func sentinelFor(code ErrorCode) error {
	switch code {
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeNotFound:
		return ErrNotFound
	case ErrCodeConflict:
		return ErrConflict
	case ErrCodeStorageUnavailable:
		return ErrStorageUnavailable
	}
	return nil
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidArgumentError creates a non-retryable caller error.
func NewInvalidArgumentError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidArgument,
		Message:   "Invalid argument",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable lookup error.
func NewNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"resource": resource},
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a non-retryable state conflict error.
func NewConflictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflict,
		Message:   "Request conflicts with current state",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUnavailableError creates a retryable persistence error.
func NewStorageUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUnavailable,
		Message:   "Storage is unavailable",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything unclassified.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Classification
// ==========================

// FromError normalizes any error into a StandardError. Wrapped class
// sentinels decide the code; the full error chain becomes Details.
func FromError(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case stderrors.Is(err, ErrInvalidArgument):
		return NewInvalidArgumentError(err.Error())
	case stderrors.Is(err, ErrNotFound):
		return &StandardError{
			Code:      ErrCodeNotFound,
			Message:   "Resource not found",
			Details:   err.Error(),
			Timestamp: time.Now().UTC(),
		}
	case stderrors.Is(err, ErrConflict):
		return NewConflictError(err.Error())
	case stderrors.Is(err, ErrStorageUnavailable):
		return NewStorageUnavailableError(err)
	default:
		return NewInternalError(err)
	}
}

// HTTPStatus maps an error code to the response status the API returns.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns how many times a caller may retry the operation.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStorageUnavailable:
		return 3
	default:
		return 0 // caller errors are never retried
	}
}

// IsRetryableErrorCode checks if an error code is retryable
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "INVALID"), strings.Contains(codeStr, "NOT_FOUND"), strings.Contains(codeStr, "CONFLICT"):
		return "CLIENT"
	default:
		return "OTHER"
	}
}
