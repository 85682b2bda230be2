// Package telemetry exposes Prometheus metrics for the collection, the HTTP
// surface and the suggestion gateway.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datavault"

// Metrics holds the registered collectors.
type Metrics struct {
	registry    *prometheus.Registry
	items       prometheus.Gauge
	mutations   *prometheus.CounterVec
	suggestions *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

// New creates a registry with the process and Go runtime collectors plus the
// application metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Number of items in the collection.",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Saved collection mutations by operation.",
		}, []string{"op"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_total",
			Help:      "Suggestion gateway calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.items,
		m.mutations,
		m.suggestions,
		m.requests,
	)
	return m
}

// SetItems records the collection size.
func (m *Metrics) SetItems(n int) {
	m.items.Set(float64(n))
}

// Mutation counts a saved mutation and records the new collection size.
func (m *Metrics) Mutation(op string, count int) {
	m.mutations.WithLabelValues(op).Inc()
	m.items.Set(float64(count))
}

// Suggestion counts a gateway call.
func (m *Metrics) Suggestion(kind, outcome string) {
	m.suggestions.WithLabelValues(kind, outcome).Inc()
}

// Request records a served HTTP request.
func (m *Metrics) Request(method string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
