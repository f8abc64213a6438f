package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/database"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/config"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/health"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/httpclient"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/telemetry"
)

// newHealthRegistry builds the component registry in report order:
// database, memory, then upstreams as listed in configuration. A nil db
// skips the database component.
func newHealthRegistry(cfg config.HealthConfig, db *sql.DB, metrics *telemetry.Metrics, logger *slog.Logger) *health.Registry {
	registry := health.New()

	if db != nil {
		registry.Register(database.NewChecker(db))
	}

	if cfg.Memory.Enabled {
		registry.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{
			WarningThreshold:  cfg.Memory.WarningThreshold,
			CriticalThreshold: cfg.Memory.CriticalThreshold,
			MaxAllocBytes:     cfg.Memory.MaxAllocBytes,
		}))
	}

	if len(cfg.Upstreams) > 0 {
		transport := httpclient.WithTransport(newUpstreamTransport())
		for i := range cfg.Upstreams {
			registry.Register(httpclient.New(&cfg.Upstreams[i], metrics, logger, transport))
		}
	}

	return registry
}

// newUpstreamTransport returns the connection pool shared by all upstream
// probes. Each upstream is hit once per aggregation, so a couple of idle
// connections per host is enough to skip the handshake on the next request.
func newUpstreamTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 2
	return t
}
