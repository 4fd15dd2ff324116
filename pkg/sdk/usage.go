package evidex

import (
	"context"
	"fmt"
	"time"

	domusage "github.com/kailas-cloud/evidex/internal/domain/usage"
)

// Op is a tracked model provider operation.
type Op string

// Tracked operations.
const (
	OpEmbedding  Op = "embedding"
	OpExtraction Op = "extraction"
)

// Period is the usage aggregation granularity.
type Period string

// Aggregation periods.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// UsageReport is token usage and budget status for one provider operation
// over one period. Limit fields are zero when no budget is configured.
type UsageReport struct {
	Op              Op
	Period          Period
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Tokens          int
	TokensLimit     int
	TokensRemaining int
	Exhausted       bool
	ResetsAt        *time.Time
}

// UsageService reports provider token usage.
type UsageService struct {
	svc usageUseCase
	obs *observer
}

// Usage returns the provider usage reporting service.
func (c *Client) Usage() *UsageService {
	return &UsageService{svc: c.usageSvc, obs: c.obs}
}

// Report returns usage for one operation over one period.
func (s *UsageService) Report(ctx context.Context, op Op, period Period) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { s.obs.observe("usage", start, err) }()

	switch op {
	case OpEmbedding, OpExtraction:
	default:
		return UsageReport{}, fmt.Errorf("evidex: unknown operation %q", op)
	}
	switch period {
	case PeriodDay, PeriodMonth:
	default:
		return UsageReport{}, fmt.Errorf("evidex: unknown period %q", period)
	}

	rep := s.svc.GetReport(ctx, domusage.Op(op), domusage.Period(period))

	out := UsageReport{
		Op:              op,
		Period:          period,
		PeriodStart:     time.UnixMilli(rep.PeriodStart()).UTC(),
		PeriodEnd:       time.UnixMilli(rep.PeriodEnd()).UTC(),
		Tokens:          rep.Metrics().Tokens(),
		TokensLimit:     rep.Budget().TokensLimit(),
		TokensRemaining: rep.Budget().TokensRemaining(),
		Exhausted:       rep.Budget().IsExhausted(),
	}
	if resets := rep.Budget().ResetsAt(); resets > 0 {
		t := time.UnixMilli(resets).UTC()
		out.ResetsAt = &t
	}
	return out, nil
}
