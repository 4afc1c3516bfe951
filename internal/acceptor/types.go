// internal/acceptor/types.go
package acceptor

import "time"

// Config is the immutable runtime config of the acceptor.
type Config struct {
	// MaxConns caps simultaneously tracked probe connections.
	// Oldest-first eviction keeps the set at or under it; a burst may
	// hold MaxConns+1 between accept and the capacity step.
	MaxConns int

	// PollInterval is the fixed sleep at the end of each loop
	// iteration. Every socket call is non-blocking; this is the only
	// suspension point.
	PollInterval time.Duration

	// StopTimeout bounds how long Stop waits for the worker to exit.
	StopTimeout time.Duration
}

// probeConn is one tracked probe connection.
type probeConn struct {
	fd         int
	acceptedAt time.Time
}
