// Package errors defines the application error taxonomy for the auth core.
// Every error carries an HTTP status code and a machine-readable error code;
// the HTTP error middleware maps them onto the unified response envelope.
package errors

import (
	"net/http"

	"jobdeck/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// The 401 group is reserved for missing, invalid, or no-longer-live
// credentials. Valid credentials that are not allowed to act map to 403.
var (
	ErrInvalidCredential = NewBaseError(
		http.StatusUnauthorized,
		"invalid_credential",
		"invalid email or password",
		"",
	)

	ErrSessionExpired = NewBaseError(
		http.StatusUnauthorized,
		"session_expired",
		"session has expired, please sign in again",
		"",
	)

	ErrSessionRevoked = NewBaseError(
		http.StatusUnauthorized,
		"session_revoked",
		"session has been revoked",
		"",
	)

	// ErrMfaRequired is distinguishable from a generic credential failure so
	// clients can route the user to a verification step, not a login form.
	ErrMfaRequired = NewBaseError(
		http.StatusUnauthorized,
		"mfa_required",
		"multi-factor verification required",
		"",
	)

	ErrPermissionDenied = NewBaseError(
		http.StatusForbidden,
		"permission_denied",
		"you do not have permission to perform this action",
		"",
	)

	ErrOrgMismatch = NewBaseError(
		http.StatusForbidden,
		"org_mismatch",
		"resource belongs to a different organization",
		"",
	)

	ErrIPNotAllowed = NewBaseError(
		http.StatusForbidden,
		"ip_not_allowed",
		"client address is not on the admin allowlist",
		"",
	)

	ErrReadOnlyMode = NewBaseError(
		http.StatusConflict,
		"read_only_mode",
		"service is in read-only mode, mutations are rejected",
		"",
	)

	ErrIdempotencyConflict = NewBaseError(
		http.StatusConflict,
		"idempotency_conflict",
		"idempotency key was already used with a different request body",
		"",
	)

	ErrIdempotencyKeyMissing = NewBaseError(
		http.StatusBadRequest,
		"idempotency_key_missing",
		"Idempotency-Key header is required on this route",
		"",
	)

	ErrRateLimited = NewBaseError(
		http.StatusTooManyRequests,
		"rate_limited",
		"too many requests, slow down",
		"",
	)

	ErrIdentityNotFound = NewBaseError(
		http.StatusNotFound,
		"identity_not_found",
		"identity not found",
		"",
	)

	ErrIdentityDisabled = NewBaseError(
		http.StatusUnauthorized,
		"identity_disabled",
		"account is disabled",
		"",
	)

	ErrMfaNotEnrolled = NewBaseError(
		http.StatusBadRequest,
		"mfa_not_enrolled",
		"no multi-factor enrollment for this account",
		"",
	)

	ErrMfaCodeInvalid = NewBaseError(
		http.StatusUnauthorized,
		"mfa_code_invalid",
		"verification code is invalid or expired",
		"",
	)

	ErrMfaAlreadyEnabled = NewBaseError(
		http.StatusConflict,
		"mfa_already_enabled",
		"multi-factor authentication is already enabled",
		"",
	)

	ErrBreakGlassInvalid = NewBaseError(
		http.StatusUnauthorized,
		"break_glass_invalid",
		"break-glass token is invalid or expired",
		"",
	)

	ErrBreakGlassReasonRequired = NewBaseError(
		http.StatusBadRequest,
		"break_glass_reason_required",
		"a reason is required to mint a break-glass token",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"validation_failed",
		"input validation failed",
		"",
	)

	ErrLeadNotFound = NewBaseError(
		http.StatusNotFound,
		"lead_not_found",
		"lead not found",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"not_found",
		"resource not found",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"conflict",
		"resource conflict",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"internal_error",
		"internal server error",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "database_execute_failed"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
