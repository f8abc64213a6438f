package config

import "time"

const (
	defaultServerPort = 3000

	defaultHealthTimeoutSeconds = 5

	defaultMemoryWarning  = 0.8
	defaultMemoryCritical = 0.95

	defaultDBMaxOpenConns = 4
	defaultDBMaxIdleConns = 2
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "health-aggregator",

		"database.driver":            "",
		"database.dsn":               "",
		"database.connect_timeout":   "10s",
		"database.max_open_conns":    defaultDBMaxOpenConns,
		"database.max_idle_conns":    defaultDBMaxIdleConns,
		"database.conn_max_lifetime": "30m",

		"health.timeout_seconds":           defaultHealthTimeoutSeconds,
		"health.max_concurrency":           0,
		"health.memory.enabled":            false,
		"health.memory.warning_threshold":  defaultMemoryWarning,
		"health.memory.critical_threshold": defaultMemoryCritical,
		"health.memory.max_alloc_bytes":    0,
	}
}

// Upstream defaults, filled per entry since koanf cannot default list elements.
const (
	defaultUpstreamTimeout           = 3 * time.Second
	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerTimeout     = 30 * time.Second
	defaultCircuitBreakerHalfOpen    = 1
)

func (h *HealthConfig) applyUpstreamDefaults() {
	for i := range h.Upstreams {
		u := &h.Upstreams[i]
		if u.Timeout == 0 {
			u.Timeout = defaultUpstreamTimeout
		}
		if u.CircuitBreaker.MaxFailures == 0 {
			u.CircuitBreaker.MaxFailures = defaultCircuitBreakerMaxFailures
		}
		if u.CircuitBreaker.Timeout == 0 {
			u.CircuitBreaker.Timeout = defaultCircuitBreakerTimeout
		}
		if u.CircuitBreaker.HalfOpenLimit == 0 {
			u.CircuitBreaker.HalfOpenLimit = defaultCircuitBreakerHalfOpen
		}
	}
}
