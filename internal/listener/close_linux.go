//go:build linux

// internal/listener/close_linux.go
package listener

import "golang.org/x/sys/unix"

// unblock forces a looping Accept to observe failure. On Linux
// shutdown(2) is the call that does it; close(2) alone would not wake a
// pending accept. The descriptor stays allocated until Release, so the
// accept loop can never race a reused descriptor number.
// Runs with l.mu held.
func (l *Listener) unblock() error {
	if err := unix.Shutdown(l.fd, unix.SHUT_RDWR); err != nil {
		return classified("shutdown", err)
	}
	return nil
}
