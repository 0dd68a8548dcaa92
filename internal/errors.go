package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

// Stable wire-level response codes. These are part of the API contract and
// must not be renumbered.
const (
	CodeSuccess                = "200000"
	CodeBadRequest             = "400000"
	CodePasswordNotValid       = "400001"
	CodeInsufficientStock      = "400002"
	CodeUnauthorized           = "401000"
	CodeInvalidCredentials     = "401001"
	CodeUserNotActive          = "401002"
	CodeTokenNotValid          = "401003"
	CodeCurrentPasswordInvalid = "401004"
	CodeNotFound               = "404000"
	CodeFileNotFound           = "404001"
	CodeUserNotFound           = "404002"
	CodeInternal               = "500000"
)

// AppError is the single failure type crossing service boundaries. It carries
// the stable response code rendered into the response envelope, the HTTP
// status for the transport layer, and an optional list of detail messages
// (validation failures, debug traces).
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Errors     []string  `json:"errors,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithErrors appends detail messages to the error list.
func (e *AppError) WithErrors(errs ...string) *AppError {
	e.Errors = append(e.Errors, errs...)
	return e
}

// ErrorList never returns nil; the envelope's error field is always an array.
func (e *AppError) ErrorList() []string {
	if e.Errors == nil {
		return []string{}
	}
	return e.Errors
}

func NewBadRequestError(errs ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       CodeBadRequest,
		Message:    "request is not valid",
		Errors:     errs,
		StatusCode: http.StatusBadRequest,
	}
}

func NewPasswordNotValidError() *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       CodePasswordNotValid,
		Message:    "Password must be 8-72 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character.",
		StatusCode: http.StatusBadRequest,
	}
}

func NewInsufficientStockError(currentStock int64) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("Insufficient stock: current stock is %d", currentStock),
		StatusCode: http.StatusBadRequest,
	}
}

func NewUnauthorizedError(errs ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       CodeUnauthorized,
		Message:    "UNAUTHORIZED",
		Errors:     errs,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError() *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       CodeUnauthorized,
		Message:    "Forbidden: insufficient permissions",
		StatusCode: http.StatusForbidden,
	}
}

func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       CodeInvalidCredentials,
		Message:    "invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}
}

func NewUserNotActiveError() *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       CodeUserNotActive,
		Message:    "user is not active",
		StatusCode: http.StatusUnauthorized,
	}
}

func NewTokenNotValidError() *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       CodeTokenNotValid,
		Message:    "token is not valid",
		StatusCode: http.StatusUnauthorized,
	}
}

func NewCurrentPasswordInvalidError() *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       CodeCurrentPasswordInvalid,
		Message:    "Current password is incorrect",
		StatusCode: http.StatusUnauthorized,
	}
}

func NewNotFoundError() *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeNotFound,
		Message:    "the resource not found",
		StatusCode: http.StatusNotFound,
	}
}

func NewFileNotFoundError() *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeFileNotFound,
		Message:    "File not found.",
		StatusCode: http.StatusNotFound,
	}
}

func NewUserNotFoundError() *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeUserNotFound,
		Message:    "the user is not found",
		StatusCode: http.StatusNotFound,
	}
}

func NewInternalError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       CodeInternal,
		Message:    "internal server error",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    string    `json:"code"`
		Message string    `json:"message"`
		Errors  []string  `json:"errors,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Errors:  e.Errors,
	})
}
