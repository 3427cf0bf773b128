package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the data core.
type Metrics struct {
	RowsWritten          *prometheus.CounterVec
	ConstraintViolations *prometheus.CounterVec
	CustomersPurged      prometheus.Counter
	UnknownVocabulary    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RowsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "finbase_rows_written_total",
			Help: "Rows accepted per entity table",
		}, []string{"entity"}),
		ConstraintViolations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "finbase_constraint_violations_total",
			Help: "Writes rejected by a declared constraint, per entity table",
		}, []string{"entity"}),
		CustomersPurged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbase_customers_purged_total",
			Help: "Customers removed with their full ownership graph",
		}),
		UnknownVocabulary: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "finbase_unknown_vocabulary_total",
			Help: "Open-string categorical values outside the advisory vocabulary",
		}, []string{"field"}),
	}
}
