// internal/status/constants.go
package status

// Acceptor run states reported in a Snapshot.

// StateStopped means the acceptor has not started or has shut down
// cleanly.
const StateStopped uint8 = 0

// StateRunning means the worker loop is accepting probes.
const StateRunning uint8 = 1

// StateFailed means a fatal socket error halted the worker.
const StateFailed uint8 = 2

// Name returns the human-readable name of a state code.
func Name(state uint8) string {
	switch state {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
