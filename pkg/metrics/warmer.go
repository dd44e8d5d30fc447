package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WarmerMetrics records background cache warming runs.
type WarmerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewWarmerMetrics registers the warmer job metrics on the provided registerer.
func NewWarmerMetrics(reg prometheus.Registerer) *WarmerMetrics {
	if reg == nil {
		return &WarmerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cache_warm_duration_seconds",
		Help:    "Duration of cache warming jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_warm_success_total",
		Help: "Successful cache warming runs.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_warm_failure_total",
		Help: "Failed cache warming runs.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &WarmerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

func (w *WarmerMetrics) ObserveDuration(job string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func (w *WarmerMetrics) IncSuccess(job string) {
	if w == nil || w.success == nil {
		return
	}
	w.success.WithLabelValues(normalizeLabel(job)).Inc()
}

func (w *WarmerMetrics) IncFailure(job string) {
	if w == nil || w.failure == nil {
		return
	}
	w.failure.WithLabelValues(normalizeLabel(job)).Inc()
}
