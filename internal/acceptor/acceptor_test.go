// internal/acceptor/acceptor_test.go
package acceptor

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tamzrod/probe-listener/internal/listener"
	"github.com/tamzrod/probe-listener/internal/status"
)

func startAcceptor(t *testing.T, maxConns int) (*Acceptor, uint16) {
	t.Helper()

	lis, err := listener.New(0)
	require.NoError(t, err)

	a, err := New(
		Config{
			MaxConns:     maxConns,
			PollInterval: 2 * time.Millisecond,
			StopTimeout:  5 * time.Second,
		},
		lis,
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(a.Stop)

	return a, lis.Port()
}

// dialProbe retries until the handshake completes: with a backlog of
// zero a connect can be refused until the loop drains the queue.
func dialProbe(t *testing.T, port uint16) net.Conn {
	t.Helper()

	var conn net.Conn
	require.Eventually(t, func() bool {
		c, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 5*time.Second, 10*time.Millisecond)

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitAccepted(t *testing.T, a *Acceptor, want uint64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return a.Snapshot().Accepted == want
	}, 5*time.Second, 5*time.Millisecond)
}

func waitOpen(t *testing.T, a *Acceptor, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return a.Snapshot().OpenConnections == want
	}, 5*time.Second, 5*time.Millisecond)
}

// closedByServer reports whether the server side has closed the
// connection. A read deadline distinguishes "held open" from EOF/reset.
func closedByServer(c net.Conn) bool {
	_ = c.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	buf := make([]byte, 1)
	_, err := c.Read(buf)
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return false
	}
	return true
}

// ---- construction ----

func TestNew_Validation(t *testing.T) {
	lis, err := listener.New(0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = lis.Close()
		lis.Release()
	})

	good := Config{MaxConns: 2, PollInterval: time.Millisecond, StopTimeout: time.Second}

	_, err = New(good, nil, nil)
	require.Error(t, err)

	bad := good
	bad.MaxConns = 0
	_, err = New(bad, lis, nil)
	require.Error(t, err)

	bad = good
	bad.PollInterval = 0
	_, err = New(bad, lis, nil)
	require.Error(t, err)

	bad = good
	bad.StopTimeout = 0
	_, err = New(bad, lis, nil)
	require.Error(t, err)
}

func TestStart_Twice(t *testing.T) {
	a, _ := startAcceptor(t, 2)
	require.Error(t, a.Start())
}

func TestStop_BeforeStart(t *testing.T) {
	lis, err := listener.New(0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = lis.Close()
		lis.Release()
	})

	a, err := New(Config{MaxConns: 2, PollInterval: time.Millisecond, StopTimeout: time.Second}, lis, nil)
	require.NoError(t, err)

	// Must return immediately, no deadlock, no panic.
	a.Stop()
}

// ---- loop behavior ----

func TestIdleLoop_DoesNotMutateSet(t *testing.T) {
	a, _ := startAcceptor(t, 2)

	// Let a number of would-block iterations pass.
	time.Sleep(50 * time.Millisecond)

	snap := a.Snapshot()
	require.Equal(t, status.StateRunning, snap.State)
	require.Zero(t, snap.Accepted)
	require.Zero(t, snap.OpenConnections)
}

func TestPeerClose_IsPruned(t *testing.T) {
	a, port := startAcceptor(t, 4)

	c := dialProbe(t, port)
	waitAccepted(t, a, 1)
	waitOpen(t, a, 1)

	require.NoError(t, c.Close())
	waitOpen(t, a, 0)

	snap := a.Snapshot()
	require.Equal(t, uint64(1), snap.Pruned)

	// Never re-added.
	time.Sleep(30 * time.Millisecond)
	require.Zero(t, a.Snapshot().OpenConnections)
}

func TestEviction_IsFIFO(t *testing.T) {
	a, port := startAcceptor(t, 2)

	c1 := dialProbe(t, port)
	waitAccepted(t, a, 1)
	c2 := dialProbe(t, port)
	waitAccepted(t, a, 2)
	c3 := dialProbe(t, port)
	waitAccepted(t, a, 3)

	// Third probe pushes the set over capacity; the oldest goes.
	waitOpen(t, a, 2)
	require.Equal(t, uint64(1), a.Snapshot().Evicted)

	require.Eventually(t, func() bool { return closedByServer(c1) },
		2*time.Second, 10*time.Millisecond)
	require.False(t, closedByServer(c2))
	require.False(t, closedByServer(c3))

	// Fourth probe: the second-oldest goes next.
	c4 := dialProbe(t, port)
	waitAccepted(t, a, 4)
	waitOpen(t, a, 2)
	require.Equal(t, uint64(2), a.Snapshot().Evicted)

	require.Eventually(t, func() bool { return closedByServer(c2) },
		2*time.Second, 10*time.Millisecond)
	require.False(t, closedByServer(c3))
	require.False(t, closedByServer(c4))
}

func TestCapacity_HeldUnderSequentialBurst(t *testing.T) {
	a, port := startAcceptor(t, 2)

	for i := 1; i <= 5; i++ {
		dialProbe(t, port)
		waitAccepted(t, a, uint64(i))
	}

	waitOpen(t, a, 2)
	snap := a.Snapshot()
	require.Equal(t, uint64(5), snap.Accepted)
	require.Equal(t, uint64(3), snap.Evicted)
}

// ---- shutdown ----

func TestStop_ClosesEverything(t *testing.T) {
	a, port := startAcceptor(t, 4)

	c1 := dialProbe(t, port)
	waitAccepted(t, a, 1)
	c2 := dialProbe(t, port)
	waitAccepted(t, a, 2)

	a.Stop()

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not signal Done after Stop")
	}

	snap := a.Snapshot()
	require.Equal(t, status.StateStopped, snap.State)
	require.Zero(t, snap.OpenConnections)
	require.NoError(t, a.Err())

	require.Eventually(t, func() bool { return closedByServer(c1) },
		2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return closedByServer(c2) },
		2*time.Second, 10*time.Millisecond)

	// Idempotent.
	a.Stop()
}

func TestFatalAcceptError_SurfacesAndHalts(t *testing.T) {
	lis, err := listener.New(0)
	require.NoError(t, err)

	a, err := New(
		Config{MaxConns: 2, PollInterval: 2 * time.Millisecond, StopTimeout: 5 * time.Second},
		lis,
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(a.Stop)

	// Kill the listening socket out from under the loop while the run
	// flag is still true; the next accept fails with something other
	// than would-block.
	require.NoError(t, lis.Close())

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not halt on fatal accept error")
	}

	require.Error(t, a.Err())
	snap := a.Snapshot()
	require.Equal(t, status.StateFailed, snap.State)
	require.Zero(t, snap.OpenConnections)

	// Stop after a fatal halt is pure bookkeeping: the worker already
	// released everything, so Stop must return at once and must not
	// touch the freed descriptor or rewrite the failure state.
	start := time.Now()
	a.Stop()
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, status.StateFailed, a.Snapshot().State)
	require.Error(t, a.Err())
}

func TestStop_BoundedWhenWorkerUnresponsive(t *testing.T) {
	lis, err := listener.New(0)
	require.NoError(t, err)

	// A sleep far longer than the stop bound keeps the worker from
	// observing the run flag in time.
	a, err := New(
		Config{MaxConns: 2, PollInterval: 2 * time.Second, StopTimeout: 50 * time.Millisecond},
		lis,
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)
	require.NoError(t, a.Start())

	// Let the worker finish its first iteration and enter the sleep.
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	a.Stop()
	elapsed := time.Since(start)

	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.Less(t, elapsed, time.Second)

	// Abandoned, not crashed: the worker is still mid-sleep and exits
	// on its own once it wakes.
	select {
	case <-a.Done():
		t.Fatal("worker should still be asleep")
	default:
	}

	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("abandoned worker never exited")
	}
}

func TestStop_ReturnsWithNoClients(t *testing.T) {
	a, _ := startAcceptor(t, 2)

	start := time.Now()
	a.Stop()
	require.Less(t, time.Since(start), 2*time.Second)

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit")
	}
}
