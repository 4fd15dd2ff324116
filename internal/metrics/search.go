package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	IndexQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evidex",
			Name:      "index_query_duration_seconds",
			Help:      "Search index query duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"index"},
	)

	IndexQueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidex",
			Name:      "index_query_errors_total",
			Help:      "Total search index query errors",
		},
		[]string{"index"},
	)

	CrossRefTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidex",
			Name:      "crossref_total",
			Help:      "PDF cross-reference outcomes for inspected HTML hits",
		},
		[]string{"outcome"}, // "both" / "html_only" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexQueryDuration)
	prometheus.MustRegister(IndexQueryErrorsTotal)
	prometheus.MustRegister(CrossRefTotal)
	searchMetricsRegistered = true
}
