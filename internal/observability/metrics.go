package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the pipeline and HTTP instrumentation, registered on its own
// registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	PipelineRuns     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	CoercedToZero    prometheus.Counter
	Warnings         *prometheus.CounterVec
	Uploads          *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "etf_dashboard",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline passes by outcome (ok, file_missing, error).",
		}, []string{"outcome"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "etf_dashboard",
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent in one load, clean, filter and view pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		CoercedToZero: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "etf_dashboard",
			Name:      "coerced_to_zero_total",
			Help:      "Numeric cells that failed to parse and were set to zero.",
		}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "etf_dashboard",
			Name:      "warnings_total",
			Help:      "User-visible warnings by code.",
		}, []string{"code"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "etf_dashboard",
			Name:      "uploads_total",
			Help:      "Workbook uploads by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "etf_dashboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "etf_dashboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PipelineRuns,
		m.PipelineDuration,
		m.CoercedToZero,
		m.Warnings,
		m.Uploads,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
