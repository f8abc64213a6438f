package health

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
	"github.com/jsamuelsen11/health-aggregator/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthChecker = (*MemoryChecker)(nil)

const (
	defaultMemoryWarning  = 0.80
	defaultMemoryCritical = 0.95
)

// MemoryCheckerConfig configures the runtime memory checker.
type MemoryCheckerConfig struct {
	// WarningThreshold is the heap usage ratio (0..1) that reports Degraded.
	WarningThreshold float64

	// CriticalThreshold is the heap usage ratio (0..1) that reports Unhealthy.
	CriticalThreshold float64

	// MaxAllocBytes is the allocation budget. Zero uses the memory obtained
	// from the OS (runtime.MemStats.Sys).
	MaxAllocBytes uint64
}

// MemoryChecker reports heap usage against a budget. It is the only shipped
// checker that can report Degraded on its own.
type MemoryChecker struct {
	cfg       MemoryCheckerConfig
	readStats func(*runtime.MemStats)
}

// NewMemoryChecker creates a memory checker. Out-of-range thresholds fall
// back to 80% and 95%.
func NewMemoryChecker(cfg MemoryCheckerConfig) *MemoryChecker {
	if cfg.WarningThreshold <= 0 || cfg.WarningThreshold >= 1 {
		cfg.WarningThreshold = defaultMemoryWarning
	}
	if cfg.CriticalThreshold <= 0 || cfg.CriticalThreshold >= 1 {
		cfg.CriticalThreshold = defaultMemoryCritical
	}
	if cfg.CriticalThreshold < cfg.WarningThreshold {
		cfg.CriticalThreshold = cfg.WarningThreshold
	}
	return &MemoryChecker{cfg: cfg, readStats: runtime.ReadMemStats}
}

// Name returns "memory".
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check compares current heap allocation to the budget.
func (m *MemoryChecker) Check(ctx context.Context) domain.ComponentHealth {
	if err := ctx.Err(); err != nil {
		return domain.Unhealthy(m.Name(), fmt.Sprintf("Health check canceled: %v", err))
	}

	var stats runtime.MemStats
	m.readStats(&stats)

	budget := m.cfg.MaxAllocBytes
	if budget == 0 {
		budget = stats.Sys
	}
	if budget == 0 {
		return domain.Healthy(m.Name(), "memory stats unavailable")
	}

	ratio := float64(stats.HeapAlloc) / float64(budget)
	msg := fmt.Sprintf("Heap usage: %.1f%% of %d bytes", ratio*100, budget)

	switch {
	case ratio >= m.cfg.CriticalThreshold:
		return domain.Unhealthy(m.Name(), msg)
	case ratio >= m.cfg.WarningThreshold:
		return domain.Degraded(m.Name(), msg)
	default:
		return domain.Healthy(m.Name(), msg)
	}
}
