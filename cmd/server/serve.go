package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/database"
	adapthttp "github.com/jsamuelsen11/health-aggregator/internal/adapters/http"
	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/health-aggregator/internal/app"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/config"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/logging"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/telemetry"
	"github.com/jsamuelsen11/health-aggregator/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const otelShutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
	}

	port := cmd.Flags().Int("port", 0, "listen port, overriding configuration")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := opts.loadConfig(config.WithOverrides(serveOverrides(cmd, *port)))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return serve(cmd.Context(), cfg)
	}

	return cmd
}

// serveOverrides maps explicitly set serve flags to config keys.
func serveOverrides(cmd *cobra.Command, port int) map[string]any {
	overrides := map[string]any{}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		overrides["server.port"] = port
	}
	return overrides
}

// serve runs the service until ctx is canceled (SIGINT/SIGTERM) or the
// server fails.
func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr).
		With(slog.String("service", cfg.Telemetry.ServiceName))

	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = database.Open(ctx, cfg.Database, logger)
		if err != nil {
			_ = otel.Shutdown(context.Background())
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() { _ = db.Close() }()
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, db, otel.exportsPrometheus, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		_ = otel.Shutdown(context.Background())
		return fmt.Errorf("resolving server: %w", err)
	}

	registry := do.MustInvoke[ports.HealthRegistry](injector)
	logger.Info("health components registered", slog.Int("count", len(registry.Checkers())))

	// Blocks until ctx is canceled (SIGINT/SIGTERM) and in-flight requests
	// have drained.
	serveErr := server.Run(ctx)
	if serveErr != nil {
		logger.Error("server stopped", slog.Any("error", serveErr))
	} else {
		logger.Info("server stopped", slog.Any("cause", context.Cause(ctx)))
	}

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return serveErr
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer            *sdktrace.TracerProvider
	meter             *sdkmetric.MeterProvider
	metrics           *telemetry.Metrics
	exportsPrometheus bool
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp, cfg.Telemetry.ServiceName)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:            tp,
		meter:             mp,
		metrics:           metrics,
		exportsPrometheus: cfg.Telemetry.Exporter == telemetry.ExporterPrometheus,
	}, nil
}

// registerDependencies declares the object graph. db is nil when no database
// is configured.
func registerDependencies(injector *do.RootScope, cfg *config.Config, db *sql.DB, servePrometheus bool, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (ports.HealthRegistry, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return newHealthRegistry(cfg.Health, db, metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.HealthService, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return app.NewHealthService(registry, app.HealthServiceConfig{
			Timeout:        cfg.Health.Timeout(),
			MaxConcurrency: cfg.Health.MaxConcurrency,
		}, metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		svc := do.MustInvoke[ports.HealthService](i)
		return handlers.NewHealthHandler(svc), nil
	})

	do.Provide(injector, func(_ do.Injector) (*handlers.RootHandler, error) {
		return handlers.NewRootHandler(cfg.Telemetry.ServiceName), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		routes := adapthttp.Routes{
			Root:   do.MustInvoke[*handlers.RootHandler](i),
			Health: do.MustInvoke[*handlers.HealthHandler](i),
		}
		if servePrometheus {
			routes.Metrics = telemetry.MetricsHandler()
		}
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(routes,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger, "/health/live", "/metrics"),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
