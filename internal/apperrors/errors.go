package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidState indicates a transition was attempted from a state that does
// not permit it (e.g. approving an already-approved request).
var ErrInvalidState = errors.New("invalid state for requested transition")

// ErrForbidden indicates the actor's role or store assignment does not
// authorize the requested action.
var ErrForbidden = errors.New("forbidden")

// ErrConcurrency indicates the aggregate lock could not be acquired within the
// bounded wait. The caller may retry.
var ErrConcurrency = errors.New("aggregate is locked by a concurrent operation")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// AppError wraps an underlying error with an HTTP-ish status code and a
// caller-facing message.
type AppError struct {
	Code    int
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

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError returns a validation failure carrying field-level detail.
// It matches errors.Is(err, ErrValidation).
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewInvalidStateError returns an invalid-transition failure. It matches
// errors.Is(err, ErrInvalidState).
func NewInvalidStateError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// NewForbiddenError returns an authorization failure. It matches
// errors.Is(err, ErrForbidden).
func NewForbiddenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
