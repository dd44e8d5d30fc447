package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomeRejected     = "rejected"
	OutcomeCircuitOpen  = "circuit_open"
	OutcomeUnauthorized = "unauthorized"
)

// UpstreamMetrics records calls made to the storefront REST backend.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
	state    *prometheus.GaugeVec
}

// NewUpstreamMetrics registers the upstream client metrics.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of storefront backend calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Storefront backend calls by outcome.",
	}, []string{"endpoint", "outcome"})
	state := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "upstream_circuit_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"breaker"})
	reg.MustRegister(duration, calls, state)
	return &UpstreamMetrics{duration: duration, calls: calls, state: state}
}

// ObserveCall records the latency and outcome of one backend call.
func (m *UpstreamMetrics) ObserveCall(endpoint, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	m.calls.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
}

// SetBreakerState publishes the numeric breaker state.
func (m *UpstreamMetrics) SetBreakerState(breaker string, state int) {
	if m == nil || m.state == nil {
		return
	}
	m.state.WithLabelValues(normalizeLabel(breaker)).Set(float64(state))
}
