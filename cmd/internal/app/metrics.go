package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. It implements
// authapi.Metrics so the auth handler can report operation outcomes.
type Metrics struct {
	registry *prometheus.Registry

	authResults  *prometheus.CounterVec
	sweptTokens  prometheus.Counter
	httpRequests *prometheus.CounterVec
}

// NewMetrics builds a registry with process/Go collectors plus the app's own.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		authResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniblog",
			Subsystem: "auth",
			Name:      "results_total",
			Help:      "Auth operation outcomes by operation and result.",
		}, []string{"op", "result"}),
		sweptTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uniblog",
			Subsystem: "auth",
			Name:      "swept_refresh_tokens_total",
			Help:      "Expired refresh tokens removed by the background sweeper.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniblog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
	}
	reg.MustRegister(m.authResults, m.sweptTokens, m.httpRequests)
	return m
}

// AuthResult satisfies authapi.Metrics.
func (m *Metrics) AuthResult(op, result string) {
	m.authResults.WithLabelValues(op, result).Inc()
}

// ObserveSwept records tokens removed by one sweeper pass.
func (m *Metrics) ObserveSwept(n int64) {
	if n > 0 {
		m.sweptTokens.Add(float64(n))
	}
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, status string) {
	m.httpRequests.WithLabelValues(method, status).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
