package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/evidex/internal/domain/usage"
	"github.com/kailas-cloud/evidex/internal/domain/usage/budget"
	"github.com/kailas-cloud/evidex/internal/domain/usage/metrics"
)

// Service handles provider usage reporting.
type Service struct {
	readers map[domusage.Op]BudgetReader
}

// New creates a Service. Readers for untracked operations can be nil
// (unlimited mode).
func New(embedding, extraction BudgetReader) *Service {
	return &Service{readers: map[domusage.Op]BudgetReader{
		domusage.OpEmbedding:  embedding,
		domusage.OpExtraction: extraction,
	}}
}

// GetReport builds a usage report for one provider operation and period.
func (s *Service) GetReport(_ context.Context, op domusage.Op, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	br := s.readers[op]

	var start, end int64
	var limit, used, remaining int64

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.Add(24 * time.Hour)
		start = dayStart.UnixMilli()
		end = dayEnd.UnixMilli()
		if br != nil {
			limit = br.DailyLimit()
			used = br.DailyUsed()
			remaining = br.RemainingDaily()
		}
	default: // month
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0)
		start = monthStart.UnixMilli()
		end = monthEnd.UnixMilli()
		if br != nil {
			limit = br.MonthlyLimit()
			used = br.MonthlyUsed()
			remaining = br.RemainingMonthly()
		}
	}

	exhausted := limit > 0 && remaining <= 0

	b := budget.New(int(limit), int(remaining), exhausted, end)
	m := metrics.New(0, int(used), 0) // per-period request counts are not tracked

	return domusage.NewReport(op, period, start, end, m, b)
}
