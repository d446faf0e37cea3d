package errorx

import (
	"errors"
	"fmt"
)

// CodeError is a fault carrying an internal status code.
// It wraps the underlying cause so errors.Is / errors.As keep working.
// Business rule violations are not CodeErrors; they travel as ErrorCode values inside a result.
type CodeError struct {
	Code  int    // internal status code
	Msg   string // human readable message
	cause error  // wrapped cause
}

// Error returns "msg: cause" when a cause is present, otherwise just msg.
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New creates a CodeError.
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf creates a CodeError with a formatted message.
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a status code and message to an underlying error.
// Usage: errorx.Wrap(err, CodeDBError, "save user")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf is Wrap with a formatted message.
// Usage: errorx.Wrapf(err, CodeNotFound, "user %d", userId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode extracts the status code, defaulting to CodeServerBusy for foreign errors.
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// Internal status codes.
const (
	CodeSuccess      = 1000 // ok
	CodeInvalidParam = 1001 // bad request parameters
	CodeUserExist    = 1002 // user already exists
	CodeUserNotExist = 1003 // user does not exist
	CodeServerBusy   = 1005 // generic server failure
	CodeUnauthorized = 1006 // missing or invalid caller identity
	CodeNotFound     = 1008 // row not found
	CodeDBError      = 1010 // store failure
	CodeCacheError   = 1011 // queue / cache backend failure
	CodeMQError      = 1012 // event publisher failure
)

var (
	ErrInvalidParam = New(CodeInvalidParam, "invalid request parameters")
	ErrServerBusy   = New(CodeServerBusy, "server busy")
	ErrUnauthorized = New(CodeUnauthorized, "missing x-user-id header")
)

// IsNotFound reports whether err is a CodeNotFound error (including gorm's record not found).
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}
