package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures by where they were caught
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindServer     ErrorKind = "server"
	KindUsage      ErrorKind = "usage"
)

// GenericNetworkMessage is shown for every transport failure of preview and download
const GenericNetworkMessage = "Network error. Please check your connection and try again."

// AppError is an error with a kind and a user-facing message
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to put on the toast surface
func (e *AppError) UserMessage() string {
	if e.Kind == KindTransport {
		return GenericNetworkMessage
	}
	return e.Message
}

// NewValidationError reports bad user input caught before any network call
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewTransportError wraps a fetch failure, bad status or undecodable body
func NewTransportError(message string, err error) *AppError {
	return &AppError{Kind: KindTransport, Message: message, Err: err}
}

// NewServerError reports a success:false reply
func NewServerError(message string) *AppError {
	return &AppError{Kind: KindServer, Message: message}
}

// NewUsageError reports an operation invoked out of sequence
func NewUsageError(message string) *AppError {
	return &AppError{Kind: KindUsage, Message: message}
}

// KindOf returns the kind of err, or "" when err is not an AppError
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
