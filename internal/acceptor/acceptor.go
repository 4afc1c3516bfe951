// internal/acceptor/acceptor.go

// Package acceptor runs the probe accept loop: one background worker
// that accepts liveness-probe connections, prunes the ones whose peer
// has gone away, and evicts the oldest when over capacity. Probe
// connections are held open and never spoken to; liveness is the TCP
// handshake itself.
package acceptor

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/probe-listener/internal/listener"
	"github.com/tamzrod/probe-listener/internal/status"
)

// Acceptor owns the listener and the ordered connection set.
// The set is mutated by the worker goroutine only; Stop signals and
// waits, it never touches the set itself.
type Acceptor struct {
	cfg Config
	lis *listener.Listener
	log *zap.Logger

	run  atomic.Bool
	done chan struct{}

	mu      sync.Mutex // guards started/stopped/err
	started bool
	stopped bool
	err     error

	// worker-owned, oldest first
	conns []probeConn

	// counters readable from any goroutine
	open     atomic.Int64
	accepted atomic.Uint64
	pruned   atomic.Uint64
	evicted  atomic.Uint64
}

// New creates an acceptor with immutable config.
func New(cfg Config, lis *listener.Listener, log *zap.Logger) (*Acceptor, error) {
	if lis == nil {
		return nil, errors.New("acceptor: listener required")
	}
	if cfg.MaxConns <= 0 {
		return nil, errors.New("acceptor: max connections must be > 0")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("acceptor: poll interval must be > 0")
	}
	if cfg.StopTimeout <= 0 {
		return nil, errors.New("acceptor: stop timeout must be > 0")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Acceptor{
		cfg:  cfg,
		lis:  lis,
		log:  log,
		done: make(chan struct{}),
	}, nil
}

// Start marks the listener as listening and launches the worker.
// A listen failure is a startup failure and leaves the worker unstarted.
func (a *Acceptor) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return errors.New("acceptor: already started")
	}
	if err := a.lis.Listen(); err != nil {
		return err
	}

	a.started = true
	a.run.Store(true)
	go a.loop()

	a.log.Info("probe acceptor started",
		zap.Uint16("port", a.lis.Port()),
		zap.Int("max_conns", a.cfg.MaxConns),
		zap.Duration("poll_interval", a.cfg.PollInterval))
	return nil
}

// Stop signals the worker, unblocks its accept, and waits for it to
// exit. The worker closes every tracked connection on its way out, so
// Stop never mutates the set and cannot race the sweep. A join timeout
// is abandoned, not escalated. Safe to call more than once and from any
// goroutine.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.started || a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.mu.Unlock()

	// A worker that already halted, fatally or otherwise, has torn
	// everything down and released the listener; there is nothing left
	// to close.
	select {
	case <-a.done:
		a.log.Info("probe acceptor stopped")
		return
	default:
	}

	a.run.Store(false)
	if err := a.lis.Close(); err != nil {
		a.log.Warn("listener close failed", zap.Error(err))
	}

	select {
	case <-a.done:
		a.log.Info("probe acceptor stopped")
	case <-time.After(a.cfg.StopTimeout):
		a.log.Error("probe acceptor did not stop in time, abandoning worker",
			zap.Duration("timeout", a.cfg.StopTimeout))
	}
}

// Done is closed when the worker has exited, whether through Stop or a
// fatal socket error.
func (a *Acceptor) Done() <-chan struct{} { return a.done }

// Err reports the fatal error that halted the worker, if any.
func (a *Acceptor) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Snapshot returns the current run state and counters. Safe from any
// goroutine.
func (a *Acceptor) Snapshot() status.Snapshot {
	st := status.StateStopped
	if a.run.Load() {
		st = status.StateRunning
	} else if a.Err() != nil {
		st = status.StateFailed
	}

	return status.Snapshot{
		State:           st,
		StateName:       status.Name(st),
		OpenConnections: int(a.open.Load()),
		Accepted:        a.accepted.Load(),
		Pruned:          a.pruned.Load(),
		Evicted:         a.evicted.Load(),
	}
}

// fail records the first fatal error and halts the loop.
func (a *Acceptor) fail(err error) {
	a.mu.Lock()
	if a.err == nil {
		a.err = err
	}
	a.mu.Unlock()

	a.run.Store(false)
	metricFatalErrors.Inc()
	a.log.Error("probe acceptor halted", zap.Error(err))
}
