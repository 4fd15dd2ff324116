package evidex

import (
	"context"
	"time"
)

// HealthStatus is the aggregated component health. Status is "ok",
// "degraded" or "error"; Checks maps component names to "ok" or "error".
type HealthStatus struct {
	Status  string
	Version string
	Checks  map[string]string
}

// HealthService checks component health.
type HealthService struct {
	svc healthUseCase
	obs *observer
}

// Health returns the health check service.
func (c *Client) Health() *HealthService {
	return &HealthService{svc: c.healthSvc, obs: c.obs}
}

// Check pings the search index and, when configured, the cache.
func (s *HealthService) Check(ctx context.Context) (_ HealthStatus, err error) {
	start := time.Now()
	defer func() { s.obs.observe("health", start, err) }()

	rep := s.svc.Check(ctx)

	checks := make(map[string]string, len(rep.Checks))
	for name, res := range rep.Checks {
		checks[name] = string(res)
	}
	return HealthStatus{
		Status:  string(rep.Status),
		Version: rep.Version,
		Checks:  checks,
	}, nil
}
