package usage

import (
	"github.com/kailas-cloud/evidex/internal/domain/usage/budget"
	"github.com/kailas-cloud/evidex/internal/domain/usage/metrics"
)

// Op is a model provider operation with a tracked token budget.
type Op string

// Provider operation constants.
const (
	// OpEmbedding covers query vectorization calls.
	OpEmbedding Op = "embedding"
	// OpExtraction covers document attribute extraction calls.
	OpExtraction Op = "extraction"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Report is a provider usage report for one operation and time period.
type Report struct {
	op          Op
	period      Period
	periodStart int64
	periodEnd   int64
	metrics     metrics.Metrics
	budget      budget.Budget
}

// NewReport creates a usage report.
func NewReport(op Op, period Period, start, end int64, m metrics.Metrics, b budget.Budget) Report {
	return Report{
		op:          op,
		period:      period,
		periodStart: start,
		periodEnd:   end,
		metrics:     m,
		budget:      b,
	}
}

// Op returns the provider operation the report covers.
func (r *Report) Op() Op { return r.op }

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Metrics returns the usage metrics.
func (r *Report) Metrics() metrics.Metrics { return r.metrics }

// Budget returns the budget status.
func (r *Report) Budget() budget.Budget { return r.budget }
