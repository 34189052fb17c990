package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:   http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
	CodeNotFound:     http.StatusNotFound,
	CodeConflict:     http.StatusConflict,
	CodeInternal:     http.StatusInternalServerError,
}

func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error taşıdığı kod ile HTTP cevabına çevrilir. Details cevabın gövdesine eklenir.
type Error struct {
	code    Code
	message string
	details map[string]any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func Validation(message string) *Error { return New(CodeValidation, message) }
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

func NotFound(message string) *Error   { return New(CodeNotFound, message) }
func Conflict(message string) *Error   { return New(CodeConflict, message) }
func Forbidden(message string) *Error  { return New(CodeForbidden, message) }

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetail(key string, value any) *Error {
	if e == nil {
		return nil
	}
	if e.details == nil {
		e.details = map[string]any{}
	}
	e.details[key] = value
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
