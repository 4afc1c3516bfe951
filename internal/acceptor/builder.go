// internal/acceptor/builder.go
package acceptor

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/probe-listener/internal/config"
	"github.com/tamzrod/probe-listener/internal/listener"
)

// Build constructs the listener and acceptor from validated, normalized
// config. Fail fast: a bind failure at startup is a startup failure,
// not something to retry.
func Build(hc cfg.HealthConfig, log *zap.Logger) (*Acceptor, error) {
	lis, err := listener.New(hc.Port)
	if err != nil {
		return nil, err
	}

	a, err := New(
		Config{
			MaxConns:     hc.MaxConnections,
			PollInterval: time.Duration(hc.PollIntervalMs) * time.Millisecond,
			StopTimeout:  time.Duration(hc.StopTimeoutMs) * time.Millisecond,
		},
		lis,
		log,
	)
	if err != nil {
		_ = lis.Close()
		lis.Release()
		return nil, err
	}

	return a, nil
}
