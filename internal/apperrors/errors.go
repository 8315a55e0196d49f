package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeDuplicateKey           = "DUPLICATE_KEY"
	CodeForeignKeyViolation    = "FOREIGN_KEY_VIOLATION"
	CodeUnauthenticated        = "UNAUTHENTICATED"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeTransientConflict      = "TRANSIENT_CONFLICT"
	CodeInternal               = "INTERNAL"
)

// Error is the typed failure surfaced by the store and the services.
// Fields is only populated for validation failures.
type Error struct {
	Code    string
	Message string
	Fields  map[string]string
	Cause   error
}

func (e Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e Error) Unwrap() error {
	return e.Cause
}

func New(code, message string) error {
	return Error{Code: code, Message: message}
}

func Wrap(code, message string, cause error) error {
	return Error{Code: code, Message: message, Cause: cause}
}

func Validation(fields map[string]string) error {
	return Error{Code: CodeValidation, Message: "Validation failed", Fields: fields}
}

func NotFound(entity string) error {
	return Error{Code: CodeNotFound, Message: entity + " not found"}
}

// CodeOf returns the code carried by err, or CodeInternal for untyped errors.
func CodeOf(err error) string {
	var appErr Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func Is(err error, code string) bool {
	var appErr Error
	return errors.As(err, &appErr) && appErr.Code == code
}

func HTTPStatus(code string) int {
	switch code {
	case CodeValidation, CodeForeignKeyViolation:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateKey, CodeInvalidStateTransition:
		return http.StatusConflict
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeTransientConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
