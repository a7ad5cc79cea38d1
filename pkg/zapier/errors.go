package zapier

import (
	"fmt"
)

type ErrorKind string

const (
	KindInvalidData ErrorKind = "InvalidData"
	KindRemoteError ErrorKind = "RemoteError"
	KindUnknown     ErrorKind = "Unknown"
)

const (
	CodeInvalidData = 400
	CodeRemote      = 502
)

// Error is the only failure shape handed back to the automation platform.
type Error struct {
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	// Detail carries the remote error name for RemoteError
	Detail string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %d (%s): %s", e.Kind, e.Code, e.Detail, e.Message)
	}
	return fmt.Sprintf("%s %d: %s", e.Kind, e.Code, e.Message)
}

func NewInvalidDataError(message string) *Error {
	return &Error{
		Message: message,
		Kind:    KindInvalidData,
		Code:    CodeInvalidData,
	}
}

func NewInvalidDataErrorf(format string, args ...interface{}) *Error {
	return NewInvalidDataError(fmt.Sprintf(format, args...))
}

func NewRemoteError(message, name string) *Error {
	return &Error{
		Message: message,
		Kind:    KindRemoteError,
		Code:    CodeRemote,
		Detail:  name,
	}
}

func NewUnknownError(message string) *Error {
	return &Error{
		Message: message,
		Kind:    KindUnknown,
		Code:    CodeRemote,
	}
}
