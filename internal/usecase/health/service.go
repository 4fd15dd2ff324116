package health

import (
	"context"

	"github.com/kailas-cloud/evidex/internal/version"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a non-critical component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the primary index is unreachable.
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
	Status  Status
	Version string
	Checks  map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index IndexPinger
	cache CachePinger
}

// New creates a Service. cache can be nil (cacheless deployment).
func New(index IndexPinger, cache CachePinger) *Service {
	return &Service{index: index, cache: cache}
}

// Check runs health checks against all components. The search index is the
// primary dependency: when it fails the service is unhealthy. A failing
// cache only degrades it (search still works, embeddings and budgets fall
// back to direct calls and in-memory counters).
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	status := Healthy
	if err := s.index.Ping(ctx); err != nil {
		checks["index"] = CheckError
		status = Unhealthy
	} else {
		checks["index"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["cache"] = CheckOK
		}
	}

	return Report{Status: status, Version: version.Version, Checks: checks}
}
