// internal/status/snapshot.go
package status

// Snapshot represents exactly what the acceptor is willing to report.
// It contains no logic and no memory of the past beyond current
// counters.
type Snapshot struct {
	State           uint8  `json:"-"`
	StateName       string `json:"state"`
	OpenConnections int    `json:"open_connections"`
	Accepted        uint64 `json:"accepted_total"`
	Pruned          uint64 `json:"pruned_total"`
	Evicted         uint64 `json:"evicted_total"`
}
