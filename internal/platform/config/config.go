// Package config provides configuration loading and validation for the service.
// Configuration is loaded with environment variable overrides using a layered
// system: defaults -> base.yaml -> {profile}.yaml -> env vars.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Database  DatabaseConfig  `koanf:"database"`
	Health    HealthConfig    `koanf:"health"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// DatabaseConfig holds the backing store connection settings. An empty
// Driver disables the database component entirely.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	DSN             string        `koanf:"dsn"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// Enabled reports whether a database driver is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != ""
}

// HealthConfig holds the aggregation policy and the optional components
// registered alongside the database.
type HealthConfig struct {
	// TimeoutSeconds bounds every individual component check.
	TimeoutSeconds int `koanf:"timeout_seconds"`
	// MaxConcurrency caps in-flight checks per aggregation; 0 is unbounded.
	MaxConcurrency int              `koanf:"max_concurrency"`
	Memory         MemoryConfig     `koanf:"memory"`
	Upstreams      []UpstreamConfig `koanf:"upstreams"`
}

// Timeout returns TimeoutSeconds as a duration.
func (h HealthConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// MemoryConfig holds runtime memory check settings.
type MemoryConfig struct {
	Enabled           bool    `koanf:"enabled"`
	WarningThreshold  float64 `koanf:"warning_threshold"`
	CriticalThreshold float64 `koanf:"critical_threshold"`
	MaxAllocBytes     uint64  `koanf:"max_alloc_bytes"`
}

// UpstreamConfig describes one downstream HTTP dependency probed on every
// aggregation.
type UpstreamConfig struct {
	Name           string               `koanf:"name"`
	URL            string               `koanf:"url"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig holds token bucket settings. A zero RequestsPerSecond
// disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}
