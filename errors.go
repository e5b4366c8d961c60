package heapmgr

import (
	"errors"
	"fmt"
)

// Error represents a heapmgr error with an error code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error // wrapped error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("heapmgr: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("heapmgr: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode classifies a heapmgr error.
type ErrorCode int

const (
	// Success indicates there was no error.
	Success ErrorCode = iota

	// ErrFamilyNotFound indicates alloc was called against an
	// unregistered family name. Recoverable.
	ErrFamilyNotFound

	// ErrFamilyExists indicates RegisterFamily was called twice with
	// the same name. Recoverable.
	ErrFamilyExists

	// ErrElementTooLarge indicates a family's element size is zero or
	// exceeds the platform page size. Fatal.
	ErrElementTooLarge

	// ErrRequestTooLarge indicates units*element_size exceeds the
	// maximum payload a single page can host. Recoverable.
	ErrRequestTooLarge

	// ErrDoubleFree indicates Free was called on a block that is
	// already free. Fatal.
	ErrDoubleFree

	// ErrNotManaged indicates Free was called with a slice that was
	// never returned by Alloc on this manager. Fatal.
	ErrNotManaged

	// ErrPlatform indicates the platform page backend failed to
	// acquire or release pages. Fatal.
	ErrPlatform
)

var errorMessages = map[ErrorCode]string{
	Success:            "success",
	ErrFamilyNotFound:  "family not registered",
	ErrFamilyExists:    "family already registered",
	ErrElementTooLarge: "element size is zero or exceeds page size",
	ErrRequestTooLarge: "requested size exceeds a page's usable payload",
	ErrDoubleFree:      "double free detected",
	ErrNotManaged:      "pointer was not returned by this manager",
	ErrPlatform:        "platform page backend failed",
}

// NewError creates a new Error with the given code.
func NewError(code ErrorCode) *Error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = fmt.Sprintf("unknown error code %d", code)
	}
	return &Error{Code: code, Message: msg}
}

// WrapError creates a new Error wrapping another error.
func WrapError(code ErrorCode, err error) *Error {
	e := NewError(code)
	e.Err = err
	return e
}

// Code returns the error code carried by err: Success if err is nil,
// the Code of the *Error that err is or wraps, and ErrPlatform for
// any other error.
func Code(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrPlatform
}

// IsFamilyNotFound returns true if err is ErrFamilyNotFound.
func IsFamilyNotFound(err error) bool {
	return Code(err) == ErrFamilyNotFound
}

// IsFamilyExists returns true if err is ErrFamilyExists.
func IsFamilyExists(err error) bool {
	return Code(err) == ErrFamilyExists
}

// IsRequestTooLarge returns true if err is ErrRequestTooLarge.
func IsRequestTooLarge(err error) bool {
	return Code(err) == ErrRequestTooLarge
}

// fatal panics with a *Error. Platform failure, oversized element
// registration, double-free, and freeing an unmanaged pointer are all
// fatal per the manager's error taxonomy: the process is assumed to be
// exiting and no cleanup is attempted.
func fatal(code ErrorCode, wrapped error) {
	if wrapped != nil {
		panic(WrapError(code, wrapped))
	}
	panic(NewError(code))
}
