// Package metrics defines the server's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fairshare"

// Extraction outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid_request"
	OutcomeMalformed = "malformed"
	OutcomeUpstream  = "upstream_error"
	OutcomeCanceled  = "canceled"
	OutcomeDisabled  = "disabled"
)

// Metrics holds every collector, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests       *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
	mutationsRejected *prometheus.CounterVec
	extractions       *prometheus.CounterVec
	activeSessions    prometheus.Gauge
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency, by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		mutationsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_rejected_total",
			Help:      "Bill edits rejected as invalid, by operation.",
		}, []string{"op"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Receipt extractions, by outcome.",
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Editing sessions that have not expired.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.mutationsRejected,
		m.extractions,
		m.activeSessions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

// RejectedMutation counts an edit that was rejected.
func (m *Metrics) RejectedMutation(op string) {
	m.mutationsRejected.WithLabelValues(op).Inc()
}

// Extraction counts one extraction attempt.
func (m *Metrics) Extraction(outcome string) {
	m.extractions.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}
