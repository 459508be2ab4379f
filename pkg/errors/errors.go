package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed domain error carried from the registrar to the
// session layer, which maps the code onto a protocol reply kind.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on the error code so predeclared errors work with errors.Is
// even after Clone overrides the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for registrar outcomes.
var (
	ErrCourseNotFound = New("COURSE_NOT_FOUND", "course slot invalid or undefined")
	ErrActionDenied   = New("ACTION_DENIED", "action not permitted in current state")
	ErrNoCourses      = New("NO_COURSES", "no enrollments or wait-list entries")
	ErrUserNotFound   = New("USER_NOT_FOUND", "username not registered")
	ErrInternal       = New("INTERNAL_ERROR", "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
