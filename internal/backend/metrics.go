package backend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records backend call outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codeassist",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Backend analysis calls by mode and outcome.",
		}, []string{"mode", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codeassist",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Backend analysis call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.latency)
	}
	return m
}

func (m *Metrics) observe(mode Mode, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(string(mode), outcome).Inc()
	m.latency.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}
