package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rbos-labs/rbos-backend/pkg/types"
)

// CartMetrics records reconciliation outcomes for the cart engine and the
// merge endpoint.
type CartMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	conflicts *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_reconcile_duration_seconds",
		Help:    "Duration of cart reconciliations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_reconcile_success",
		Help: "Successful cart reconciliations.",
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_reconcile_failure",
		Help: "Failed cart reconciliations.",
	}, []string{"op"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_conflicts_total",
		Help: "Conflict entries surfaced by reconciliations.",
	}, []string{"kind"})
	reg.MustRegister(duration, success, failure, conflicts)
	return &CartMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		conflicts: conflicts,
	}
}

// ObserveReconcile records one reconciliation attempt.
func (c *CartMetrics) ObserveReconcile(op string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	if c.duration != nil {
		c.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if err != nil {
		if c.failure != nil {
			c.failure.WithLabelValues(op).Inc()
		}
		return
	}
	if c.success != nil {
		c.success.WithLabelValues(op).Inc()
	}
}

// CountConflicts tallies a conflict report by kind.
func (c *CartMetrics) CountConflicts(report *types.ConflictReport) {
	if c == nil || c.conflicts == nil || report.IsEmpty() {
		return
	}
	if n := len(report.Dropped); n > 0 {
		c.conflicts.WithLabelValues("dropped").Add(float64(n))
	}
	if n := len(report.Clamped); n > 0 {
		c.conflicts.WithLabelValues("clamped").Add(float64(n))
	}
	if n := len(report.Merged); n > 0 {
		c.conflicts.WithLabelValues("merged").Add(float64(n))
	}
}
