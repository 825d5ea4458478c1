// Package apperrors defines the error taxonomy shared by services and storage.
package apperrors

import (
	"fmt"
	"net/http"
)

// Code classifies an AppError for HTTP mapping and logging.
type Code string

const (
	// CodeNotFound means the referenced entity is absent or filtered out by its status.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidState means a transition precondition was not met.
	CodeInvalidState Code = "INVALID_STATE"
	// CodeValidation means the request payload violates a constraint.
	CodeValidation Code = "VALIDATION_FAILED"
	// CodePersistence means the store was unreachable or rejected a write.
	CodePersistence Code = "PERSISTENCE_FAILED"
	// CodeNotification means an email or push transport failed.
	CodeNotification Code = "NOTIFICATION_FAILED"
)

// AppError carries a classified error through the service layer.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState, CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Details returns the underlying error text, or "" when there is none.
// Handlers attach it to 5xx bodies alongside a generic message.
func (e *AppError) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// NotFound builds a CodeNotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// InvalidState builds a CodeInvalidState error.
func InvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message}
}

// Validation builds a CodeValidation error.
func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// Persistence wraps a store failure.
func Persistence(message string, err error) *AppError {
	return &AppError{Code: CodePersistence, Message: message, Err: err}
}

// Notification wraps a mail or push transport failure.
func Notification(message string, err error) *AppError {
	return &AppError{Code: CodeNotification, Message: message, Err: err}
}
