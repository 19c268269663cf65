package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional provider is failing; core storage
	// still works and searches fall back to keyword matching.
	Degraded Status = "degraded"
	// Unhealthy indicates the item store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	providers map[string]ProviderChecker
}

// New creates a Service with the mandatory item store check.
func New(db DBPinger) *Service {
	return &Service{db: db, providers: make(map[string]ProviderChecker)}
}

// WithProvider registers an optional provider check under the given name.
// A nil checker is ignored so disabled features never appear in reports.
func (s *Service) WithProvider(name string, p ProviderChecker) *Service {
	if p != nil {
		s.providers[name] = p
	}
	return s
}

// Check runs health checks against all components. A failing item store
// makes the whole service unhealthy; failing providers only degrade it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	for name, p := range s.providers {
		if err := p.HealthCheck(ctx); err != nil {
			checks[name] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[name] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
