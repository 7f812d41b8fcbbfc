package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure category in the response envelope.
type ErrorCode string

const (
	CodeNotAuthenticated    ErrorCode = "NOT_AUTHENTICATED"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeMultipleRows        ErrorCode = "MULTIPLE_ROWS"
	CodeAlreadyRegistered   ErrorCode = "ALREADY_REGISTERED"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeUnknownOperation    ErrorCode = "UNKNOWN_OPERATION"
	CodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	CodeForeignKeyViolation ErrorCode = "FOREIGN_KEY_VIOLATION"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// ErrorBody is the serialised form of an error inside the response envelope.
type ErrorBody struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Body converts the error into its envelope representation.
func (e *AppError) Body() *ErrorBody {
	return &ErrorBody{Message: e.Message, Code: e.Code}
}

// Status maps the error to the conceptual transport status. Application-level
// cardinality failures stay 200 and surface only through the envelope.
func (e *AppError) Status() int {
	switch e.Code {
	case CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeMultipleRows:
		return http.StatusOK
	case CodeConflict:
		return http.StatusConflict
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Predefined error constructors
func NewNotAuthenticatedError() *AppError {
	return &AppError{Code: CodeNotAuthenticated, Message: "Auth session missing"}
}

func NewForbiddenError() *AppError {
	return &AppError{Code: CodeForbidden, Message: "Operation not permitted"}
}

func NewNotFoundError() *AppError {
	return &AppError{Code: CodeNotFound, Message: "No rows found"}
}

func NewMultipleRowsError() *AppError {
	return &AppError{Code: CodeMultipleRows, Message: "Multiple rows found"}
}

func NewAlreadyRegisteredError() *AppError {
	return &AppError{Code: CodeAlreadyRegistered, Message: "User already registered"}
}

func NewInvalidCredentialsError() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: "Invalid login credentials"}
}

func NewUnknownOperationError() *AppError {
	return &AppError{Code: CodeUnknownOperation, Message: "Unknown operation"}
}

func NewInvalidRequestError(format string, args ...any) *AppError {
	return &AppError{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func NewForeignKeyError(table, column string, value string) *AppError {
	return &AppError{
		Code:    CodeForeignKeyViolation,
		Message: fmt.Sprintf("insert on %q violates foreign key: %s=%q does not exist", table, column, value),
	}
}

func NewConflictError(detail string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: "duplicate key value violates unique constraint " + detail,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// AsAppError unwraps err into an AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
