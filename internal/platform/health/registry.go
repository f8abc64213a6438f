// Package health provides the building blocks of the health aggregation
// engine: an ordered, thread-safe registry of checkers, the per-check
// deadline policy, and generic checkers (latency-reporting probes and the
// runtime memory check).
package health

import (
	"sync"

	"github.com/jsamuelsen11/health-aggregator/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthRegistry = (*Registry)(nil)

// Registry is a thread-safe implementation of [ports.HealthRegistry].
// Checkers are registered once at startup and checked on every health
// request in registration order.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
}

// New creates a registry holding the given checkers in order. Nil checkers
// are skipped.
func New(checkers ...ports.HealthChecker) *Registry {
	r := &Registry{}
	for _, c := range checkers {
		r.Register(c)
	}
	return r
}

// Register appends a health checker to the registry. Safe for concurrent use.
// A nil checker is ignored.
func (r *Registry) Register(checker ports.HealthChecker) {
	if checker == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// Checkers returns a copy of the registered checkers in registration order.
// The slice is copied under a read lock so callers run checks without
// holding the lock.
func (r *Registry) Checkers() []ports.HealthChecker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	return checkers
}

// Len returns the number of registered checkers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checkers)
}
