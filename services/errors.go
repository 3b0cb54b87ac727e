package services

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failed booking-engine operation. Every failure is
// terminal for the triggering request; retries belong to the caller.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validationError"
	CodeConflict           ErrorCode = "conflictError"
	CodeInvalidState       ErrorCode = "invalidStateError"
	CodeInsufficientCredit ErrorCode = "insufficientCreditError"
	CodeNotFound           ErrorCode = "notFoundError"
	CodeAuthorization      ErrorCode = "authorizationError"
)

// Error is the typed error returned by the engine's services.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(format string, args ...interface{}) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(format string, args ...interface{}) error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func NewInsufficientCreditError(format string, args ...interface{}) error {
	return &Error{Code: CodeInsufficientCredit, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...interface{}) error {
	return &Error{Code: CodeAuthorization, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or "" for untyped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
