package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific failure class for scheduling operations.
type ErrorCode string

const (
	// ErrCodeDateUnrecognized indicates no supported date/time format matched.
	ErrCodeDateUnrecognized ErrorCode = "DATE_UNRECOGNIZED"
	// ErrCodeAmbiguousLocalTime indicates a wall-clock time that does not
	// exist in the local zone (DST gap) or maps to more than one instant.
	ErrCodeAmbiguousLocalTime ErrorCode = "DATE_AMBIGUOUS_LOCAL_TIME"
	// ErrCodeEndBeforeStart indicates a time range whose end does not follow its start.
	ErrCodeEndBeforeStart ErrorCode = "END_BEFORE_START"
	// ErrCodeMissingField indicates a required event attribute is absent.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeSchedulingConflict indicates the candidate range overlaps an existing event.
	ErrCodeSchedulingConflict ErrorCode = "SCHEDULING_CONFLICT"
	// ErrCodeNotFound indicates no event matched the reference.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAmbiguous indicates more than one event matched the reference.
	ErrCodeAmbiguous ErrorCode = "AMBIGUOUS"
	// ErrCodeBackend indicates a calendar backend failure.
	ErrCodeBackend ErrorCode = "BACKEND_ERROR"
	// ErrCodeTimeout indicates the operation exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is a structured error for scheduling operations.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *Error) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// DateUnrecognized creates an unrecognized-format error carrying the raw input.
func DateUnrecognized(input string) *Error {
	return &Error{Code: ErrCodeDateUnrecognized, Message: fmt.Sprintf("unrecognized date/time: %q", input)}
}

// AmbiguousLocalTime creates an ambiguous-local-time error.
func AmbiguousLocalTime(input string, zone string) *Error {
	return &Error{
		Code:    ErrCodeAmbiguousLocalTime,
		Message: fmt.Sprintf("%q is ambiguous or invalid in zone %s", input, zone),
	}
}

// EndBeforeStart creates an end-before-start validation error.
func EndBeforeStart(msg string) *Error {
	return &Error{Code: ErrCodeEndBeforeStart, Message: msg}
}

// MissingField creates a missing-field validation error.
func MissingField(field string) *Error {
	return &Error{Code: ErrCodeMissingField, Message: fmt.Sprintf("required field missing: %s", field)}
}

// SchedulingConflict creates a scheduling conflict error.
func SchedulingConflict(msg string) *Error {
	return &Error{Code: ErrCodeSchedulingConflict, Message: msg}
}

// NotFound creates a not-found error.
func NotFound(msg string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: msg}
}

// Ambiguous creates an ambiguous-match error.
func Ambiguous(msg string) *Error {
	return &Error{Code: ErrCodeAmbiguous, Message: msg}
}

// Backend wraps a calendar backend failure.
func Backend(msg string, cause error) *Error {
	return &Error{Code: ErrCodeBackend, Message: msg, Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error (or anything it wraps) carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a structured Error.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return defaultCode
}
