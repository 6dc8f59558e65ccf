package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by where it was detected.
type Kind string

const (
	// KindValidation is a local, synchronous rejection. No network call was attempted.
	KindValidation Kind = "validation"
	// KindUnavailable means the engine could not be reached or returned no usable body.
	KindUnavailable Kind = "unavailable"
	// KindRejected means the engine answered with a non-success status.
	KindRejected Kind = "rejected"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// Wrap attaches kind and message to err. An error that is already typed is returned as is.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

// IsKind checks whether the first typed error in the chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Message
	}
	return err.Error()
}
