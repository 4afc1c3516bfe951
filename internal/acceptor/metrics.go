// internal/acceptor/metrics.go
package acceptor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level collectors, registered with the default registry at
// startup.
var (
	metricAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "probe_connections_accepted_total",
		Help: "Total probe connections accepted",
	})

	metricPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "probe_connections_pruned_total",
		Help: "Total probe connections closed by their peer and pruned",
	})

	metricEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "probe_connections_evicted_total",
		Help: "Total probe connections evicted to enforce the connection cap",
	})

	metricFatalErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "probe_acceptor_fatal_errors_total",
		Help: "Fatal socket errors that halted the acceptor",
	})

	metricOpenConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "probe_connections_open",
		Help: "Probe connections currently held open",
	})
)
