package domain

// Status is the health verdict of a component or of the whole system.
// Statuses are totally ordered by badness: Healthy < Degraded < Unhealthy.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusHealthy, StatusDegraded, StatusUnhealthy:
		return true
	default:
		return false
	}
}

// Severity returns the rank of the status on the badness scale. Unknown
// values rank as Unhealthy so that a malformed verdict never hides a failure.
func (s Status) Severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Worse returns whichever of s and other is more severe. Ties return s.
func (s Status) Worse(other Status) Status {
	if other.Severity() > s.Severity() {
		return other
	}
	return s
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Worst folds statuses into the most severe one. An empty input is Healthy.
func Worst(statuses ...Status) Status {
	overall := StatusHealthy
	for _, s := range statuses {
		overall = overall.Worse(s)
	}
	return overall
}
