package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError into the categories callers can act on:
// re-submit corrected input, re-authenticate, re-read state, or give up.
type ErrorKind string

const (
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindForbidden    ErrorKind = "forbidden"
	ErrorKindState        ErrorKind = "state"
	ErrorKindNotFound     ErrorKind = "not_found"
	ErrorKindConflict     ErrorKind = "conflict"
	ErrorKindInternal     ErrorKind = "internal"
)

// AppError is the error type services return to the HTTP boundary. Policy
// rule violations (gender, community, capacity) are client-correctable errors,
// not server faults.
type AppError struct {
	Kind    ErrorKind         `json:"kind"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
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

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case ErrorKindValidation:
		return http.StatusBadRequest
	case ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case ErrorKindForbidden:
		return http.StatusForbidden
	case ErrorKindState:
		return http.StatusBadRequest
	case ErrorKindNotFound:
		return http.StatusNotFound
	case ErrorKindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string, details map[string]string) *AppError {
	return &AppError{Kind: ErrorKindValidation, Code: "VALIDATION_ERROR", Message: message, Details: details}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: ErrorKindUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

func NewForbiddenError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindForbidden, Code: code, Message: message}
}

func NewStateError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindState, Code: code, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: ErrorKindNotFound, Code: "NOT_FOUND", Message: resource + " not found"}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: ErrorKindConflict, Code: code, Message: message}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: ErrorKindInternal, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// AsAppError unwraps err into an *AppError, falling back to an internal error
// so handlers always have a status and code to render.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(ErrInternalServer, err)
}
