package hma

import (
	"errors"
	"fmt"
)

// Error is the error type hma operations use for the kinds of failure
// listed below. It carries a Code identifying which of the §7 kinds
// occurred and, optionally, the underlying OS or I/O error that caused
// it. A few calls pass plain OS errors through instead
// (NewFileExclusiveLocker, and closing the HMA file in Disconnect);
// Code reports those as ErrGeneric.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error // wrapped error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hma: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("hma: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode enumerates the kinds of failure this package surfaces.
// There is no code for success: a nil error is success, matching Go
// convention rather than threading a sentinel OK value through every
// return.
type ErrorCode int

const (
	// ErrBusy indicates the requested lock is held by another
	// connection and the caller asked not to block, or that Connect
	// found no free client slot.
	ErrBusy ErrorCode = iota + 1

	// ErrBusyDeadlock indicates the requested lock cannot be obtained:
	// either the OS reported a deadlock (EDEADLK) on a blocking request,
	// or Lock found no way to make progress against the holder (a live
	// in-process peer, or a live remote peer on a non-blocking request;
	// see DESIGN.md's local-peer-deadlock resolution). In the latter
	// case no cycle of waiters is checked for.
	ErrBusyDeadlock

	// ErrNoMem indicates an allocation needed to track the connection's
	// lock history failed.
	ErrNoMem

	// ErrCantOpen indicates the database or HMA control file could not
	// be stat'd, created, opened, or sized.
	ErrCantOpen

	// ErrGeneric covers conditions outside the other kinds: corrupt
	// layout, a failed memory mapping, an OS lock call failing for a
	// reason other than contention, or a violated invariant.
	ErrGeneric
)

var errorMessages = map[ErrorCode]string{
	ErrBusy:         "resource busy",
	ErrBusyDeadlock: "deadlock detected",
	ErrNoMem:        "out of memory",
	ErrCantOpen:     "cannot open HMA file",
	ErrGeneric:      "internal error",
}

func (c ErrorCode) String() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error code %d", c)
}

// NewError creates a new Error with the given code and the code's default
// message.
func NewError(code ErrorCode) *Error {
	return &Error{Code: code, Message: code.String()}
}

// WrapError creates a new Error wrapping a lower-level cause.
func WrapError(code ErrorCode, err error) *Error {
	e := NewError(code)
	e.Err = err
	return e
}

// Code returns the ErrorCode carried by err, or ErrGeneric if err is
// non-nil but not an *Error. Code(nil) returns the zero ErrorCode, which
// is not any of the named kinds above — callers should check err == nil
// for success, not Code(err).
func Code(err error) ErrorCode {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrGeneric
}

// IsBusy reports whether err is ErrBusy (lock held, non-blocking request).
func IsBusy(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrBusy
}

// IsBusyDeadlock reports whether err is ErrBusyDeadlock.
func IsBusyDeadlock(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrBusyDeadlock
}

// IsCantOpen reports whether err is ErrCantOpen.
func IsCantOpen(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCantOpen
}
