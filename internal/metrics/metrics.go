// Package metrics exposes Prometheus collectors for pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for AnalysesTotal.
const (
	OutcomeOK              = "ok"
	OutcomeSchemaError     = "schema_error"
	OutcomeEmptyGroup      = "empty_group"
	OutcomeFeatureMismatch = "feature_mismatch"
	OutcomeInvalidValue    = "invalid_value"
	OutcomeError           = "error"
)

// Metrics holds the collectors registered for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	RowsPredicted    prometheus.Counter
	CrisisRows       prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
}

// New creates a registry with process and Go collectors plus the pipeline metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liquidity",
			Name:      "analyses_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "liquidity",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		RowsPredicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liquidity",
			Name:      "rows_predicted_total",
			Help:      "Rows scored by the prediction provider.",
		}),
		CrisisRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liquidity",
			Name:      "crisis_rows_total",
			Help:      "Rows flagged as liquidity crises.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liquidity",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.AnalysesTotal, m.AnalysisDuration, m.RowsPredicted, m.CrisisRows, m.HTTPRequests)
	return m
}

// ObserveAnalysis records one pipeline run. rows and crises are ignored
// unless outcome is OutcomeOK.
func (m *Metrics) ObserveAnalysis(outcome string, took time.Duration, rows, crises int) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
	m.AnalysisDuration.Observe(took.Seconds())
	if outcome == OutcomeOK {
		m.RowsPredicted.Add(float64(rows))
		m.CrisisRows.Add(float64(crises))
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
