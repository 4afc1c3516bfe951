// internal/listener/listener.go

// Package listener owns the health-check listening socket: one raw TCP
// descriptor bound to 0.0.0.0:port, non-blocking from creation to close.
// It never reads or writes probe payloads; its only job is to prove the
// process can still complete a TCP handshake.
package listener

import (
	"errors"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/tamzrod/probe-listener/internal/sockerr"
)

// Listener is the health-check endpoint. It holds exactly one listening
// descriptor. Once Release (or a platform unblock that frees the
// descriptor) has run, no further syscall is ever issued on the stored
// descriptor number: the kernel may have reassigned it.
type Listener struct {
	fd   int
	port uint16

	mu       sync.Mutex // serializes Accept against Close/Release
	released bool
}

// New creates the listening socket: TCP stream, non-blocking, bound to
// 0.0.0.0:port. Port 0 binds an ephemeral port; Port reports the result.
// Any failure is a classified fatal error and leaves no descriptor open.
func New(port uint16) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, classified("socket", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, classified("set-nonblock", err)
	}

	sa := &unix.SockaddrInet4{Port: int(port)} // zero Addr = INADDR_ANY
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, classified("bind", err)
	}

	bound, err := boundPort(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Listener{fd: fd, port: bound}, nil
}

// Listen marks the socket as listening.
// Backlog is zero on purpose: one pending connection at a time, monitors
// retry on refusal.
func (l *Listener) Listen() error {
	if err := unix.Listen(l.fd, 0); err != nil {
		return classified("listen", err)
	}
	return nil
}

// Accept attempts to accept one pending connection without blocking.
// A WouldBlock error means no client is pending and is expected.
// After Close/Release the descriptor is gone and Accept reports EBADF
// without touching the kernel.
// The returned descriptor is still blocking; callers MUST SetNonblock it
// before use.
func (l *Listener) Accept() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return -1, sockerr.New("accept", unix.EBADF)
	}

	fd, _, err := unix.Accept(l.fd)
	if err != nil {
		return -1, classified("accept", err)
	}
	return fd, nil
}

// Close forces any looping Accept to observe failure. The platform
// unblock runs at most once; a Listener whose descriptor is already
// freed reports success without a syscall.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return nil
	}
	return l.unblock()
}

// Release frees the descriptor, exactly once. Call only when no Accept
// can be in flight, i.e. after the accept loop has exited.
func (l *Listener) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return
	}
	l.released = true
	unix.Close(l.fd)
}

// Port reports the bound port.
func (l *Listener) Port() uint16 { return l.port }

// SetNonblock marks an accepted connection descriptor non-blocking.
// Liveness checks must never be able to suspend the accept worker.
func SetNonblock(fd int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return classified("set-nonblock", err)
	}
	return nil
}

// CheckConn reports whether the peer behind fd is still connected, using
// a one-byte non-blocking read. A zero-byte read is a clean remote
// close. Any byte actually read is discarded; probe payloads carry no
// meaning.
func CheckConn(fd int) (bool, error) {
	var buf [1]byte
	n, err := unix.Read(fd, buf[:])
	if err == nil {
		return n > 0, nil
	}

	cerr := classified("read", err)
	switch sockerr.ClassOf(cerr) {
	case sockerr.WouldBlock:
		return true, nil
	case sockerr.PeerDisconnected:
		return false, nil
	default:
		return false, cerr
	}
}

// CloseConn closes an accepted connection descriptor.
func CloseConn(fd int) {
	unix.Close(fd)
}

// boundPort resolves the port the kernel actually assigned.
func boundPort(fd int) (uint16, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, classified("getsockname", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, sockerr.New("getsockname", unix.EAFNOSUPPORT)
	}
	return uint16(in4.Port), nil
}

// classified wraps a syscall failure with its semantic class.
func classified(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return sockerr.New(op, errno)
	}
	return err
}
