// internal/config/config.go
package config

type Config struct {
	Health  HealthConfig  `yaml:"health"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// ---- HEALTH ----

type HealthConfig struct {
	Port           uint16 `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	StopTimeoutMs  int    `yaml:"stop_timeout_ms"`
}

// ---- METRICS ----

type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level string `yaml:"level"`
}
