// internal/sockerr/sockerr.go

// Package sockerr reconciles platform socket error codes into a small
// closed set of semantic outcomes. Loop logic reasons only in these
// classes; the per-platform code tables live in the build-tagged files.
package sockerr

import (
	"errors"
	"fmt"
	"syscall"
)

// Class is the semantic outcome of a socket error.
type Class int

const (
	// WouldBlock means the operation cannot complete without blocking.
	// Not a failure: there is no work right now.
	WouldBlock Class = iota

	// PeerDisconnected means the remote end is gone or the descriptor
	// is no longer usable for communication. The connection is closed
	// and discarded, never surfaced as an error.
	PeerDisconnected

	// Fatal is everything else: a configuration or OS-level failure.
	// The resource that produced it is unusable.
	Fatal
)

// Category attached to every error this package produces.
const Category = "Network Error"

// Error is a classified socket error.
type Error struct {
	Op    string
	Errno syscall.Errno
	Class Class
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", Category, e.Op, message(e.Errno))
}

func (e *Error) Unwrap() error { return e.Errno }

// New classifies errno and tags it with the failing operation.
func New(op string, errno syscall.Errno) *Error {
	return &Error{Op: op, Errno: errno, Class: Classify(errno)}
}

// Classify maps a raw platform error code onto a Class.
func Classify(errno syscall.Errno) Class {
	switch {
	case isWouldBlock(errno):
		return WouldBlock
	case isDisconnect(errno):
		return PeerDisconnected
	default:
		return Fatal
	}
}

// ClassOf extracts the Class from any error produced by this package,
// however deeply wrapped. Errors from elsewhere are Fatal.
func ClassOf(err error) Class {
	var se *Error
	if errors.As(err, &se) {
		return se.Class
	}
	return Fatal
}
