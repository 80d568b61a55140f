package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Scheduling error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInternal
	ErrInvalidSchedule
	ErrOverlapsExistingSlot
	ErrOverlapsFixedSchedule
	ErrConflictDetected
	ErrLockedByFutureBooking
	ErrInvalidDuration
	ErrServiceUnavailable
)

// Code extracts the ErrorCode from an error chain, or ErrInternal if the
// chain carries no AppError.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether the error chain carries the given code.
func Is(err error, code ErrorCode) bool {
	return Code(err) == code
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// InvalidSchedule rejects malformed slot or override windows before any
// persistence call.
func InvalidSchedule(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidSchedule,
		Message: message,
	}
}

func OverlapsExistingSlot(message string) *AppError {
	return &AppError{
		Code:    ErrOverlapsExistingSlot,
		Message: message,
	}
}

func OverlapsFixedSchedule(message string) *AppError {
	return &AppError{
		Code:    ErrOverlapsFixedSchedule,
		Message: message,
	}
}

// ConflictDetected means two bookings raced for the same window and this
// one lost.
func ConflictDetected(message string) *AppError {
	return &AppError{
		Code:    ErrConflictDetected,
		Message: message,
	}
}

// LockedByFutureBooking blocks schedule mutations over windows already
// occupied by a committed appointment.
func LockedByFutureBooking(message string) *AppError {
	return &AppError{
		Code:    ErrLockedByFutureBooking,
		Message: message,
	}
}

func InvalidDuration(input string) *AppError {
	return &AppError{
		Code:    ErrInvalidDuration,
		Message: fmt.Sprintf("unparsable duration %q", input),
	}
}

// ServiceUnavailable is retryable by the caller with the same idempotency
// key where applicable.
func ServiceUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrServiceUnavailable,
		Message: "service temporarily unavailable",
		Err:     err,
	}
}
