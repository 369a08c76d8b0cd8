package coreml

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies the errors returned by the package.
type Code int

const (
	// CodeNotSupported means the graph is valid WebNN but CoreML cannot express it: an
	// unsupported data type, rank, layout or attribute combination.
	CodeNotSupported Code = iota + 1

	// CodeUnknown means an internal or I/O failure while producing the package.
	CodeUnknown
)

func (c Code) String() string {
	switch c {
	case CodeNotSupported:
		return "NotSupported"
	case CodeUnknown:
		return "Unknown"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is the error type returned by CreateAndBuild and Lower.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.cause }

// notSupported returns a CodeNotSupported error.
func notSupported(format string, args ...any) error {
	return &Error{Code: CodeNotSupported, Message: fmt.Sprintf(format, args...)}
}

// wrapError returns err as an *Error of the given code, prefixed by the message.
func wrapError(code Code, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Code: code, Message: msg + ": " + err.Error(), cause: err}
}

// withContext prefixes the message of err with the formatted context, keeping its code.
// Errors that are not an *Error are unknown.
func withContext(err error, format string, args ...any) error {
	var e *Error
	if !errors.As(err, &e) {
		return wrapError(CodeUnknown, err, format, args...)
	}
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...) + ": " + e.Message, cause: e.cause}
}

func hasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsNotSupported returns whether err, or an error it wraps, is a CodeNotSupported *Error.
func IsNotSupported(err error) bool { return hasCode(err, CodeNotSupported) }

// IsUnknown returns whether err, or an error it wraps, is a CodeUnknown *Error.
func IsUnknown(err error) bool { return hasCode(err, CodeUnknown) }
