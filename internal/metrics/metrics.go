// Package metrics owns the Prometheus collectors for the HTTP surface and the AI flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	aiCalls      *prometheus.CounterVec
	aiDuration   *prometheus.HistogramVec
}

// New creates a Metrics backed by its own registry, so tests can build as many as they
// like without colliding on the global one.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soloura",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "soloura",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soloura",
			Name:      "ai_flow_calls_total",
			Help:      "AI prompt calls by flow and outcome.",
		}, []string{"flow", "outcome"}),
		aiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "soloura",
			Name:      "ai_flow_duration_seconds",
			Help:      "AI prompt call latency by flow.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"flow"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.aiCalls, m.aiDuration,
	)
	return m
}

// ObserveHTTP records one finished request. route is the chi route pattern, not the raw path.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveAI records one AI flow call. outcome is "ok", "invalid_input" or "failed".
func (m *Metrics) ObserveAI(flow, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aiCalls.WithLabelValues(flow, outcome).Inc()
	if outcome != "invalid_input" {
		m.aiDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

