// internal/acceptor/runner.go
package acceptor

import (
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/probe-listener/internal/listener"
	"github.com/tamzrod/probe-listener/internal/sockerr"
)

// loop is the worker. One iteration = accept once, sweep, evict, sleep.
// All probe socket IO happens here and nowhere else.
func (a *Acceptor) loop() {
	defer a.teardown()

	for a.run.Load() {
		if !a.acceptOne() {
			return
		}
		if !a.sweep() {
			return
		}
		a.evict()

		// The socket calls above never block; without this the loop
		// would peg a CPU.
		time.Sleep(a.cfg.PollInterval)
	}
}

// teardown closes everything the worker still tracks, exactly once, and
// signals Done. It runs on the worker so Stop never races the set.
func (a *Acceptor) teardown() {
	a.run.Store(false)

	for _, c := range a.conns {
		listener.CloseConn(c.fd)
	}
	a.conns = nil
	a.open.Store(0)
	metricOpenConns.Set(0)

	a.lis.Release()
	close(a.done)
}

// acceptOne takes at most one pending probe connection. WouldBlock means
// nothing is pending. Any other failure is fatal, except while shutting
// down, when accept failures are the expected effect of Stop closing
// the listener.
func (a *Acceptor) acceptOne() bool {
	fd, err := a.lis.Accept()
	if err != nil {
		if sockerr.ClassOf(err) == sockerr.WouldBlock {
			return true
		}
		if !a.run.Load() {
			return false
		}
		a.fail(err)
		return false
	}

	if err := listener.SetNonblock(fd); err != nil {
		listener.CloseConn(fd)
		a.fail(err)
		return false
	}

	a.conns = append(a.conns, probeConn{fd: fd, acceptedAt: time.Now()})
	a.accepted.Add(1)
	a.open.Store(int64(len(a.conns)))
	metricAccepted.Inc()
	metricOpenConns.Set(float64(len(a.conns)))

	a.log.Debug("probe connection accepted",
		zap.Int("fd", fd),
		zap.Int("open", len(a.conns)))
	return true
}

// sweep drops connections whose peer is gone, preserving the relative
// order of the survivors.
func (a *Acceptor) sweep() bool {
	kept := a.conns[:0]
	for i, c := range a.conns {
		alive, err := listener.CheckConn(c.fd)
		if err != nil {
			// Reassemble the set so teardown closes everything that
			// is still open.
			a.conns = append(kept, a.conns[i:]...)
			a.fail(err)
			return false
		}

		if alive {
			kept = append(kept, c)
			continue
		}

		listener.CloseConn(c.fd)
		a.pruned.Add(1)
		metricPruned.Inc()
		a.log.Debug("probe connection closed by peer", zap.Int("fd", c.fd))
	}

	a.conns = kept
	a.open.Store(int64(len(a.conns)))
	metricOpenConns.Set(float64(len(a.conns)))
	return true
}

// evict enforces the cap, oldest out first. Probe clients are expected
// to reconnect; recency wins over tenure.
func (a *Acceptor) evict() {
	for len(a.conns) > a.cfg.MaxConns {
		oldest := a.conns[0]
		a.conns = a.conns[1:]

		listener.CloseConn(oldest.fd)
		a.evicted.Add(1)
		metricEvicted.Inc()

		a.log.Debug("probe connection evicted",
			zap.Int("fd", oldest.fd),
			zap.Time("accepted_at", oldest.acceptedAt))
	}

	a.open.Store(int64(len(a.conns)))
	metricOpenConns.Set(float64(len(a.conns)))
}
