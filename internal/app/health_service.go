// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/health-aggregator/internal/app/fanout"
	"github.com/jsamuelsen11/health-aggregator/internal/domain"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/health"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/logging"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/telemetry"
	"github.com/jsamuelsen11/health-aggregator/internal/ports"
)

// Compile-time check that HealthService implements ports.HealthService.
var _ ports.HealthService = (*HealthService)(nil)

// HealthServiceConfig holds the aggregation policy.
type HealthServiceConfig struct {
	// Timeout bounds each individual check. Zero uses health.DefaultTimeout.
	Timeout time.Duration

	// MaxConcurrency caps the number of checks running at once. Zero or
	// less runs every check concurrently.
	MaxConcurrency int
}

// HealthService implements ports.HealthService. Every call fans the
// registered checks out concurrently, waits for all of them, and folds the
// verdicts into one report. It holds no state between calls.
type HealthService struct {
	registry ports.HealthRegistry
	cfg      HealthServiceConfig
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewHealthService creates a HealthService over registry. If metrics is nil,
// metric recording is skipped. A nil logger discards output.
func NewHealthService(registry ports.HealthRegistry, cfg HealthServiceConfig, metrics *telemetry.Metrics, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = health.DefaultTimeout
	}
	return &HealthService{
		registry: registry,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Aggregate runs one bounded check per registered component and returns the
// combined report. Components appear in registration order regardless of
// completion order; the overall status is the worst component status.
func (s *HealthService) Aggregate(ctx context.Context) domain.SystemHealth {
	checkers := s.registry.Checkers()

	// Every deadline starts now, not when the check gets a worker, so a
	// bounded pool never stretches the response past the slowest bound.
	armed := make([]armedCheck, len(checkers))
	for i, c := range checkers {
		bounded := health.WithDeadline(c, s.cfg.Timeout)
		checkCtx, cancel := context.WithTimeout(ctx, bounded.CheckTimeout())
		defer cancel()
		armed[i] = armedCheck{checker: bounded, ctx: checkCtx}
	}

	components := fanout.Map(ctx, s.cfg.MaxConcurrency, armed,
		func(_ context.Context, a armedCheck) domain.ComponentHealth {
			start := time.Now()
			verdict := a.checker.Check(a.ctx)
			s.observe(ctx, verdict, time.Since(start))
			return verdict
		},
		func(a armedCheck, err error) domain.ComponentHealth {
			// The request went away before this check got a worker.
			// WithDeadline already turns checker panics into verdicts.
			verdict := domain.Unhealthy(a.checker.Name(), "Health check failed: "+err.Error())
			s.observe(ctx, verdict, 0)
			return verdict
		},
	)

	report := domain.NewSystemHealth(components, s.now())

	if report.Status != domain.StatusHealthy {
		logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "system health not healthy",
			slog.String("operation", "Aggregate"),
			slog.String("status", report.Status.String()),
			slog.Int("components", len(report.Components)),
		)
	}

	return report
}

// armedCheck pairs a bounded checker with the context carrying its deadline.
type armedCheck struct {
	checker *health.DeadlineChecker
	ctx     context.Context
}

// observe logs a non-healthy verdict and records check metrics.
// Safe to call with nil metrics.
func (s *HealthService) observe(ctx context.Context, verdict domain.ComponentHealth, elapsed time.Duration) {
	if verdict.Status != domain.StatusHealthy {
		logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "component health check not healthy",
			slog.String("operation", "Aggregate"),
			slog.String("component", verdict.Name),
			slog.String("status", verdict.Status.String()),
			slog.String("message", verdict.Message),
			slog.Duration("elapsed", elapsed),
		)
	}

	if s.metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		telemetry.AttrComponent.String(verdict.Name),
		telemetry.AttrHealthStatus.String(verdict.Status.String()),
	)
	s.metrics.HealthCheckDuration.Record(ctx, elapsed.Seconds(), attrs)
	s.metrics.HealthCheckTotal.Add(ctx, 1, attrs)
}
