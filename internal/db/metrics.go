package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics registers the query collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "omnipos",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of data layer round-trips by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "omnipos",
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Failed data layer round-trips by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.duration, m.errors)
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}
