package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"mediahub/internal/core/domain"
)

// ErrorCode represents application error codes
type ErrorCode string

const (
	ErrCodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	ErrCodePermissionDenied       ErrorCode = "PERMISSION_DENIED"
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodeValidation             ErrorCode = "VALIDATION_ERROR"
	ErrCodeConflict               ErrorCode = "CONFLICT"
	ErrCodeUnknownVariant         ErrorCode = "UNKNOWN_VARIANT"
	ErrCodeRateLimit              ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable     ErrorCode = "SERVICE_UNAVAILABLE"
)

// Messages surfaced to callers for the security-sensitive kinds. They never
// carry details of what was missing.
const (
	MsgAuthenticationRequired = "authentication required"
	MsgPermissionDenied       = "permission denied"
	MsgInternal               = "internal server error"
)

// AppError represents an application error with code and context
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Context    map[string]interface{}
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Context:    make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with application error
func WrapError(err error, code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Cause:      err,
		Context:    make(map[string]interface{}),
	}
}

// Common error constructors
func NewValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewAuthenticationRequiredError() *AppError {
	return NewAppError(ErrCodeAuthenticationRequired, MsgAuthenticationRequired, http.StatusUnauthorized)
}

func NewPermissionDeniedError() *AppError {
	return NewAppError(ErrCodePermissionDenied, MsgPermissionDenied, http.StatusForbidden)
}

func NewConflictError(message string) *AppError {
	return NewAppError(ErrCodeConflict, message, http.StatusConflict)
}

func NewRateLimitError() *AppError {
	return NewAppError(ErrCodeRateLimit, "rate limit exceeded", http.StatusTooManyRequests)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func NewServiceUnavailableError(message string) *AppError {
	return NewAppError(ErrCodeServiceUnavailable, message, http.StatusServiceUnavailable)
}

// IsAppError checks if error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// FromDomain maps a domain failure onto the HTTP taxonomy. The caller-facing
// message for validation, conflict and not-found kinds is the wrapped error
// text; authentication and permission failures always get the fixed generic
// message. Anything unrecognised becomes an internal error whose cause is kept
// for server-side logging only.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}

	switch {
	case stderrors.Is(err, domain.ErrAuthenticationRequired):
		return WrapError(err, ErrCodeAuthenticationRequired, MsgAuthenticationRequired, http.StatusUnauthorized)
	case stderrors.Is(err, domain.ErrPermissionDenied):
		return WrapError(err, ErrCodePermissionDenied, MsgPermissionDenied, http.StatusForbidden)
	case stderrors.Is(err, domain.ErrNotFound):
		return WrapError(err, ErrCodeNotFound, err.Error(), http.StatusNotFound)
	case stderrors.Is(err, domain.ErrValidation):
		return WrapError(err, ErrCodeValidation, err.Error(), http.StatusBadRequest)
	case stderrors.Is(err, domain.ErrConflict):
		return WrapError(err, ErrCodeConflict, err.Error(), http.StatusConflict)
	case stderrors.Is(err, domain.ErrUnknownVariant):
		return WrapError(err, ErrCodeUnknownVariant, err.Error(), http.StatusBadRequest)
	default:
		return WrapError(err, ErrCodeInternal, MsgInternal, http.StatusInternalServerError)
	}
}
