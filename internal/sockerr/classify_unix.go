//go:build unix

// internal/sockerr/classify_unix.go
package sockerr

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// POSIX code tables. Non-POSIX platforms would carry their own file with
// their own disjoint numeric constants; nothing outside this file may
// compare errnos directly.

func isWouldBlock(errno syscall.Errno) bool {
	return errno == unix.EAGAIN || errno == unix.EWOULDBLOCK
}

// ECONNRESET and EPIPE sit alongside EBADF here: a peer that resets is
// gone just as surely as one that closes cleanly.
func isDisconnect(errno syscall.Errno) bool {
	switch errno {
	case unix.EBADF, unix.ECONNRESET, unix.EPIPE:
		return true
	}
	return false
}

// ---- FATAL MESSAGES ----

var messages = map[syscall.Errno]string{
	unix.EACCES:     "the address is protected and the process lacks privileges",
	unix.EADDRINUSE: "the given address is already in use",
	unix.EBADF:      "not a valid open file descriptor",
	unix.EINVAL:     "the socket is already bound or the address is invalid for its domain",
	unix.ENOTSOCK:   "the file descriptor does not refer to a socket",
	unix.EOPNOTSUPP: "the socket type does not support this operation",
	unix.EFAULT:     "buffer outside accessible address space",
	unix.EINTR:      "interrupted by a signal before any data was read",
	unix.EIO:        "low-level I/O error",
	unix.EMFILE:     "no more socket descriptors are available",
	unix.ENOBUFS:    "no buffer space is available",
}

func message(errno syscall.Errno) string {
	if m, ok := messages[errno]; ok {
		return m
	}
	return fmt.Sprintf("socket error #%d", int(errno))
}
