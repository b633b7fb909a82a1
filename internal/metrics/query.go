package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storelens",
			Name:      "queries_total",
			Help:      "Total number of executed queries",
		},
		[]string{"collection", "operation", "outcome"},
	)

	QueriesRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storelens",
			Name:      "queries_rejected_total",
			Help:      "Queries rejected before reaching the store",
		},
		[]string{"collection", "reason"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storelens",
			Name:      "query_duration_seconds",
			Help:      "Store-side query execution time in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collection", "operation"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueriesRejectedTotal)
	prometheus.MustRegister(QueryDuration)
	queryMetricsRegistered = true
}
