// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultMaxConnections = 10
	DefaultPollIntervalMs = 5
	DefaultStopTimeoutMs  = 5000
	DefaultLogLevel       = "info"
)

// Normalize fills defaults for optional fields.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	h := &cfg.Health
	if h.MaxConnections == 0 {
		h.MaxConnections = DefaultMaxConnections
	}
	if h.PollIntervalMs == 0 {
		h.PollIntervalMs = DefaultPollIntervalMs
	}
	if h.StopTimeoutMs == 0 {
		h.StopTimeoutMs = DefaultStopTimeoutMs
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
}
