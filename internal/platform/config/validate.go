package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Telemetry.validate(),
		c.Database.validate(),
		c.Health.validate(),
		c.validateHealthFitsRequest(),
	)
}

// validateHealthFitsRequest ensures a full aggregation can finish before the
// request timeout middleware (sized from server.write_timeout) gives up.
func (c *Config) validateHealthFitsRequest() error {
	if c.Server.WriteTimeout <= 0 || c.Health.TimeoutSeconds < 1 {
		return nil
	}
	var errs []error
	if c.Server.WriteTimeout <= c.Health.Timeout() {
		errs = append(errs, fmt.Errorf("server.write_timeout (%s) must exceed health.timeout_seconds (%ds)",
			c.Server.WriteTimeout, c.Health.TimeoutSeconds))
	}
	for i, u := range c.Health.Upstreams {
		if u.Timeout >= c.Server.WriteTimeout {
			errs = append(errs, fmt.Errorf("health.upstreams[%d].timeout (%s) must be below server.write_timeout (%s)",
				i, u.Timeout, c.Server.WriteTimeout))
		}
	}
	return errors.Join(errs...)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp", "prometheus":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp, prometheus; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}

func (d *DatabaseConfig) validate() error {
	if !d.Enabled() {
		return nil
	}

	var errs []error

	switch d.Driver {
	case "sqlite", "sqlite3":
		// Pure-Go and cgo SQLite drivers.
	default:
		errs = append(errs, fmt.Errorf("database.driver must be one of: sqlite, sqlite3; got %q", d.Driver))
	}
	if d.DSN == "" {
		errs = append(errs, errors.New("database.dsn must not be empty when a driver is set"))
	}
	if d.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("database.connect_timeout must be positive"))
	}
	if d.MaxOpenConns < 0 || d.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must not be negative"))
	}

	return errors.Join(errs...)
}

func (h *HealthConfig) validate() error {
	var errs []error

	if h.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("health.timeout_seconds must be >= 1, got %d", h.TimeoutSeconds))
	}
	if h.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("health.max_concurrency must be >= 0, got %d", h.MaxConcurrency))
	}

	if h.Memory.Enabled {
		m := h.Memory
		if m.WarningThreshold <= 0 || m.CriticalThreshold >= 1 || m.WarningThreshold >= m.CriticalThreshold {
			errs = append(errs, fmt.Errorf(
				"health.memory thresholds must satisfy 0 < warning < critical < 1, got %.2f/%.2f",
				m.WarningThreshold, m.CriticalThreshold))
		}
	}

	seen := make(map[string]struct{}, len(h.Upstreams))
	for i, u := range h.Upstreams {
		if u.Name == "" {
			errs = append(errs, fmt.Errorf("health.upstreams[%d].name must not be empty", i))
		}
		if _, dup := seen[u.Name]; dup {
			errs = append(errs, fmt.Errorf("health.upstreams[%d].name %q is duplicated", i, u.Name))
		}
		seen[u.Name] = struct{}{}

		if parsed, err := url.Parse(u.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("health.upstreams[%d].url must be an absolute URL, got %q", i, u.URL))
		}
		if u.CircuitBreaker.MaxFailures < 1 {
			errs = append(errs, fmt.Errorf("health.upstreams[%d].circuit_breaker.max_failures must be >= 1, got %d",
				i, u.CircuitBreaker.MaxFailures))
		}
		if u.RateLimit.RequestsPerSecond < 0 {
			errs = append(errs, fmt.Errorf("health.upstreams[%d].rate_limit.requests_per_second must not be negative", i))
		}
	}

	return errors.Join(errs...)
}
