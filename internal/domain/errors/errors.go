// Package errors defines the user-management failures that reach API clients.
// Each one knows its HTTP status and a stable business code.
package errors

import (
	"net/http"

	"usermgmt/internal/errors"
)

// AppError is implemented by every error the HTTP layer can render directly.
type AppError interface {
	error
	HTTPCode() int
	ErrorCode() string
	Message() string
	Details() string // optional, empty when absent
}

// BaseError is an AppError identified by its business code. Copies made by
// WithDetails still match their source error under errors.Is.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

func newError(httpCode int, errorCode, message string) *BaseError {
	return &BaseError{httpCode: httpCode, errorCode: errorCode, message: message}
}

func (e *BaseError) Error() string     { return e.message }
func (e *BaseError) HTTPCode() int     { return e.httpCode }
func (e *BaseError) ErrorCode() string { return e.errorCode }
func (e *BaseError) Message() string   { return e.message }
func (e *BaseError) Details() string   { return e.details }

// WrapMessage annotates e with context for logs. Clients still see Message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// WithDetails returns a copy of e carrying details for the client.
func (e *BaseError) WithDetails(details string) *BaseError {
	detailed := *e
	detailed.details = details

	return &detailed
}

func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)

	return ok && e.errorCode == t.errorCode
}

var (
	ErrUserNotFound       = newError(http.StatusNotFound, "USER_NOT_FOUND", "No user exists with the given email")
	ErrUserAlreadyExists  = newError(http.StatusConflict, "USER_ALREADY_EXISTS", "A user with this email already exists")
	ErrUserCreationFailed = newError(http.StatusInternalServerError, "USER_CREATION_FAILED", "Failed to create user")
	ErrUserUpdateFailed   = newError(http.StatusInternalServerError, "USER_UPDATE_FAILED", "Failed to update user")

	ErrPasswordHashFailed     = newError(http.StatusInternalServerError, "PASSWORD_HASH_FAILED", "Failed to process password")
	ErrPasswordStrength       = newError(http.StatusBadRequest, "PASSWORD_STRENGTH", "Password does not meet the strength requirements")
	ErrPasswordForbiddenWords = newError(http.StatusBadRequest, "PASSWORD_FORBIDDEN_WORDS", "Password contains forbidden words or patterns")

	ErrValidationFailed  = newError(http.StatusBadRequest, "VALIDATION_FAILED", "Input validation failed")
	ErrTransactionFailed = newError(http.StatusInternalServerError, "TRANSACTION_FAILED", "Database transaction failed")

	// ErrInternalError is what clients see for failures that carry no AppError.
	ErrInternalError = newError(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error, please try again later")
)

// DatabaseExecuteError is a store failure that is neither not-found nor a
// known constraint violation. The driver error stays reachable through Unwrap.
type DatabaseExecuteError struct {
	err     error
	details string
}

func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{err: err, details: details}
}

func (e *DatabaseExecuteError) Error() string {
	return "database execution failed: " + e.err.Error()
}

func (e *DatabaseExecuteError) Unwrap() error     { return e.err }
func (e *DatabaseExecuteError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *DatabaseExecuteError) ErrorCode() string { return "DATABASE_EXECUTE_FAILED" }
func (e *DatabaseExecuteError) Message() string   { return "Database execution failed" }
func (e *DatabaseExecuteError) Details() string   { return e.details }
