// Package metrics owns the service's Prometheus collectors. Every method is
// safe to call on a nil *Metrics so callers can run without instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	// Registry is private to this instance so tests can build several.
	Registry *prometheus.Registry

	httpDuration   *prometheus.HistogramVec
	reportsBuilt   *prometheus.CounterVec
	exportsWritten *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	messages       *prometheus.CounterVec
	rateLimited    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cuotas_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		reportsBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuotas_reports_built_total",
				Help: "Reports computed by the reconciliation engine.",
			},
			[]string{"report"},
		),
		exportsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuotas_exports_total",
				Help: "Report files written, by format.",
			},
			[]string{"report", "format"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuotas_upstream_errors_total",
				Help: "Errors from the data backend, broker or spreadsheet API.",
			},
			[]string{"service"},
		),
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuotas_export_messages_total",
				Help: "Report export messages by outcome.",
			},
			[]string{"outcome"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cuotas_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter.",
			},
		),
	}
}

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) IncrReport(report string) {
	if m == nil {
		return
	}
	m.reportsBuilt.WithLabelValues(report).Inc()
}

func (m *Metrics) IncrExport(report, format string) {
	if m == nil {
		return
	}
	m.exportsWritten.WithLabelValues(report, format).Inc()
}

func (m *Metrics) IncrUpstreamError(service string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(service).Inc()
}

// IncrMessage counts export messages; outcome is published, publish_failed,
// processed or failed.
func (m *Metrics) IncrMessage(outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
