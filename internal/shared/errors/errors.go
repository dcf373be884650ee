package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with additional context
type AppError struct {
	Code    string // Error code for client
	Message string // Human-readable message
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"

	// Remote sheet store failure classification. Each code maps to a
	// distinct remediation message shown to the shop owner.
	ErrCodeStoreNotConfigured = "STORE_NOT_CONFIGURED"
	ErrCodeStoreUnreachable   = "STORE_UNREACHABLE"
	ErrCodeStoreForbidden     = "STORE_FORBIDDEN"
	ErrCodeStoreNotFound      = "STORE_NOT_FOUND"
	ErrCodeStoreBadResponse   = "STORE_BAD_RESPONSE"
	ErrCodeStoreRejected      = "STORE_REJECTED"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	}
}

// Internal creates an internal error
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// StoreNotConfigured reports that no sheet URL is configured. Mutations
// short-circuit on this before touching the cache.
func StoreNotConfigured() *AppError {
	return &AppError{
		Code:    ErrCodeStoreNotConfigured,
		Message: "sheet backend is not configured; set the Web App URL in settings",
	}
}

// StoreUnreachable classifies transport-level failures (offline, DNS, CORS).
func StoreUnreachable(err error) *AppError {
	return &AppError{
		Code:    ErrCodeStoreUnreachable,
		Message: "could not reach the sheet backend; check your connection and the Web App URL",
		Err:     err,
	}
}

// StoreForbidden classifies 401/403/302 responses from the Web App, which
// almost always mean the script is not deployed with anonymous access.
func StoreForbidden(status int) *AppError {
	return &AppError{
		Code:    ErrCodeStoreForbidden,
		Message: fmt.Sprintf("sheet backend refused the request (HTTP %d); redeploy the Web App with access set to Anyone", status),
	}
}

// StoreNotFound classifies 404 responses (wrong or stale deployment URL).
func StoreNotFound() *AppError {
	return &AppError{
		Code:    ErrCodeStoreNotFound,
		Message: "sheet backend URL not found (HTTP 404); verify the deployment URL",
	}
}

// StoreBadResponse classifies unparseable or unexpected response bodies.
func StoreBadResponse(err error) *AppError {
	return &AppError{
		Code:    ErrCodeStoreBadResponse,
		Message: "sheet backend returned an unexpected response; verify the Web App deployment",
		Err:     err,
	}
}

// StoreRejected classifies application-level rejections, where the script
// responded but reported status != "success".
func StoreRejected(message string) *AppError {
	if message == "" {
		message = "sheet backend rejected the change"
	}
	return &AppError{
		Code:    ErrCodeStoreRejected,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
