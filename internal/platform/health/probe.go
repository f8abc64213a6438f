package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
	"github.com/jsamuelsen11/health-aggregator/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthChecker = (*ProbeChecker)(nil)

// Probe performs one round trip against a dependency and reports whether it
// succeeded. It must be read-only.
type Probe func(ctx context.Context) error

// ProbeChecker turns a [Probe] into a checker that reports the probe's
// latency when it succeeds and the probe's error text when it fails.
type ProbeChecker struct {
	name  string
	probe Probe
}

// NewProbeChecker creates a checker named name around probe.
func NewProbeChecker(name string, probe Probe) *ProbeChecker {
	return &ProbeChecker{name: name, probe: probe}
}

// Name returns the component name.
func (p *ProbeChecker) Name() string {
	return p.name
}

// Check runs the probe once.
func (p *ProbeChecker) Check(ctx context.Context) domain.ComponentHealth {
	start := time.Now()
	if err := p.probe(ctx); err != nil {
		return domain.Unhealthy(p.name, err.Error())
	}
	return domain.Healthy(p.name, ResponseTime(time.Since(start)))
}

// ResponseTime formats a probe latency for a verdict message,
// e.g. "Response time: 42ms".
func ResponseTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("Response time: %dms", d.Milliseconds())
}
