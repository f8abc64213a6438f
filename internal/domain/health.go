package domain

import "time"

// ComponentHealth is the verdict produced by one check of one component.
// Values are created fresh by every check and never mutated afterwards.
type ComponentHealth struct {
	Name    string
	Status  Status
	Message string
}

// Healthy creates a healthy verdict for the named component.
func Healthy(name, message string) ComponentHealth {
	return ComponentHealth{Name: name, Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded verdict for the named component.
func Degraded(name, message string) ComponentHealth {
	return ComponentHealth{Name: name, Status: StatusDegraded, Message: message}
}

// Unhealthy creates an unhealthy verdict for the named component.
func Unhealthy(name, message string) ComponentHealth {
	return ComponentHealth{Name: name, Status: StatusUnhealthy, Message: message}
}

// SystemHealth is the aggregate report for one health request.
//
// Invariants: Components holds exactly one entry per registered component in
// registration order, and Status is the worst status among them (Healthy when
// there are none).
type SystemHealth struct {
	Status     Status
	Components []ComponentHealth
	Timestamp  time.Time
}

// NewSystemHealth assembles a report from component verdicts, folding their
// statuses into the overall status. A nil slice is normalized to empty.
func NewSystemHealth(components []ComponentHealth, at time.Time) SystemHealth {
	if components == nil {
		components = []ComponentHealth{}
	}

	statuses := make([]Status, len(components))
	for i, c := range components {
		statuses[i] = c.Status
	}

	return SystemHealth{
		Status:     Worst(statuses...),
		Components: components,
		Timestamp:  at,
	}
}

// Serving reports whether the system can still take traffic. Degraded
// systems keep serving; only Unhealthy ones do not.
func (h SystemHealth) Serving() bool {
	return h.Status != StatusUnhealthy
}
