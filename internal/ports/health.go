package ports

import (
	"context"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
)

// HealthChecker is implemented by any component that can report its health.
// Examples: database connections, downstream API clients, runtime memory.
type HealthChecker interface {
	// Name returns a human-readable identifier for this component
	// (e.g., "database", "memory", "billing-api").
	Name() string

	// Check performs exactly one probe and returns the component's verdict.
	// It never fails: probe errors are reported as an Unhealthy verdict with
	// the error text as the message. Implementations must respect ctx
	// cancellation and deadlines and must not mutate shared state.
	Check(ctx context.Context) domain.ComponentHealth
}

// HealthRegistry holds the ordered set of checkers assembled at startup.
type HealthRegistry interface {
	// Register appends a HealthChecker. Registration order is report order.
	Register(checker HealthChecker)

	// Checkers returns a snapshot of the registered checkers in
	// registration order.
	Checkers() []HealthChecker
}

// HealthService aggregates the verdicts of every registered checker.
// Implemented by the application layer; called by the health handler.
type HealthService interface {
	// Aggregate runs every registered check concurrently, waits for all of
	// them, and folds the verdicts into one report. It has no error outcome.
	Aggregate(ctx context.Context) domain.SystemHealth
}
