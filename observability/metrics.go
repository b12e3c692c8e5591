package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes recorded on the submissions counter.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
	OutcomeBusy      = "busy"
)

// Metrics holds the export collectors on a private registry so tests can
// build as many as they like.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	upstream    prometheus.Histogram
}

// NewMetrics registers the export collectors plus the Go and process
// collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saft",
			Subsystem: "export",
			Name:      "submissions_total",
			Help:      "Export submissions by document type, period and outcome.",
		}, []string{"document_type", "period", "outcome"}),
		upstream: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "saft",
			Subsystem: "export",
			Name:      "upstream_seconds",
			Help:      "Latency of requests to the export endpoint.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	reg.MustRegister(
		m.submissions,
		m.upstream,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSubmission counts one submission.
func (m *Metrics) ObserveSubmission(documentType, period, outcome string) {
	m.submissions.WithLabelValues(documentType, period, outcome).Inc()
}

// ObserveUpstream records how long the export endpoint took.
func (m *Metrics) ObserveUpstream(d time.Duration) {
	m.upstream.Observe(d.Seconds())
}

// Registry exposes the registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
