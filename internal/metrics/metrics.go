// Package metrics exposes Prometheus counters for the phone assistant.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostline"

// Metrics owns a private registry so several instances can coexist (one
// per test, for example). It implements dialogue.Observer.
type Metrics struct {
	reg *prometheus.Registry

	turns     *prometheus.CounterVec
	completed *prometheus.CounterVec
	failures  *prometheus.CounterVec
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

var _ dialogue.Observer = (*Metrics)(nil)

// New creates and registers all collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Utterances handled, by reported intent.",
		}, []string{"intent"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_completed_total",
			Help:      "Orders and reservations successfully created.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_failures_total",
			Help:      "Failed calls to the restaurant backend, by operation.",
		}, []string{"op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP API requests, by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP API latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.reg.MustRegister(
		m.turns, m.completed, m.failures, m.requests, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// TurnHandled counts one utterance.
func (m *Metrics) TurnHandled(intent string) { m.turns.WithLabelValues(intent).Inc() }

// FlowCompleted counts one created order or reservation.
func (m *Metrics) FlowCompleted(kind string) { m.completed.WithLabelValues(kind).Inc() }

// BackendFailed counts one failed backend call.
func (m *Metrics) BackendFailed(op string) { m.failures.WithLabelValues(op).Inc() }

// ObserveRequest records one HTTP API request.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

// TrackSessions exposes the number of live sessions as a gauge sampled
// at scrape time.
func (m *Metrics) TrackSessions(count func() int) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Callers with a session in memory.",
	}, func() float64 { return float64(count()) }))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
