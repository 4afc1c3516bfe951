// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil configuration")
	}

	h := cfg.Health

	if h.Port == 0 {
		return fmt.Errorf("health: port is required")
	}
	if h.MaxConnections < 0 {
		return fmt.Errorf("health: max_connections must be >= 0 (0 selects the default)")
	}
	if h.PollIntervalMs < 0 {
		return fmt.Errorf("health: poll_interval_ms must be >= 0 (0 selects the default)")
	}
	if h.StopTimeoutMs < 0 {
		return fmt.Errorf("health: stop_timeout_ms must be >= 0 (0 selects the default)")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics: listen_addr is required when metrics are enabled")
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
	}

	return nil
}
