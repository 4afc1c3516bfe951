//go:build unix && !linux

// internal/listener/close_other.go
package listener

import "golang.org/x/sys/unix"

// unblock forces a looping Accept to observe failure. On Darwin and the
// BSDs shutdown(2) on a listening socket reports ENOTCONN without
// waking accept, so the descriptor is closed outright and marked
// released; Accept and Release then refuse to touch the freed number.
// Runs with l.mu held.
func (l *Listener) unblock() error {
	l.released = true
	if err := unix.Close(l.fd); err != nil {
		return classified("close", err)
	}
	return nil
}
