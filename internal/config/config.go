package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values are layered: built-in defaults, then an optional YAML config file,
// then WOMS_-prefixed environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// RedisConfig contains the optional shared rate-limit store connection.
// Only consulted when rate_limit.store is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig selects the rate-limit counter store and sweep cadence.
//
// The limiter is fixed-window; running multiple replicas with the memory
// store multiplies the effective quota by the replica count, which is why
// the redis store exists.
type RateLimitConfig struct {
	Store         string        `mapstructure:"store"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RealtimeConfig tunes the websocket hub.
type RealtimeConfig struct {
	WriteWait  time.Duration `mapstructure:"write_wait"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`

	// Format selects "json" or "console" output
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the in-process counter snapshot endpoint
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
