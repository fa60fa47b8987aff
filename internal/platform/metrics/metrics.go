// Package metrics holds the Prometheus collectors of the analysis service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yousuf64/shift"
)

const (
	LabelService  = "service"
	LabelMethod   = "method"
	LabelEndpoint = "endpoint"
	LabelStatus   = "status"
	LabelProvider = "provider"
	LabelOutcome  = "outcome"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Analyses
	AnalysesTotal    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	ServiceInfo *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a private registry.
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{LabelService: serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{LabelMethod, LabelEndpoint, LabelStatus},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{LabelMethod, LabelEndpoint},
		),

		HTTPRequestsInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "http_requests_in_flight",
				Help:        "Current number of HTTP requests being served",
				ConstLabels: constLabels,
			},
			[]string{LabelMethod, LabelEndpoint},
		),

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "analyses_total",
				Help:        "Total number of accessibility analyses by provider and outcome",
				ConstLabels: constLabels,
			},
			[]string{LabelProvider, LabelOutcome},
		),

		// LLM calls routinely take tens of seconds.
		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "provider_request_duration_seconds",
				Help:        "Duration of the outbound AI provider call in seconds",
				Buckets:     []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
				ConstLabels: constLabels,
			},
			[]string{LabelProvider},
		),

		ServiceInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "service_info",
				Help:        "Service information",
				ConstLabels: constLabels,
			},
			[]string{"version", "go_version"},
		),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.AnalysesTotal,
		m.ProviderDuration,
		m.ServiceInfo,
	)

	return m
}

// Registry exposes the registry for tests and custom gatherers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordAnalysis counts one finished analysis. Outcome is "report",
// "rejection" or an error kind such as "invalid_json".
func (m *Metrics) RecordAnalysis(provider, outcome string) {
	m.AnalysesTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveProvider records the latency of one outbound vendor call.
func (m *Metrics) ObserveProvider(provider string, start time.Time) {
	m.ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetServiceInfo(version, goVersion string) {
	m.ServiceInfo.WithLabelValues(version, goVersion).Set(1)
}

// HTTPMiddleware records request counts and latency keyed by the matched
// route pattern, keeping label cardinality bounded.
func (m *Metrics) HTTPMiddleware(next shift.HandlerFunc) shift.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, route shift.Route) error {
		start := time.Now()
		endpoint := route.Path

		m.HTTPRequestsInFlight.WithLabelValues(r.Method, endpoint).Inc()
		defer m.HTTPRequestsInFlight.WithLabelValues(r.Method, endpoint).Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		err := next(wrapped, r, route)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(wrapped.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())

		return err
	}
}

// responseWriter wraps [http.ResponseWriter] to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
