package assign

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	assignmentLatency *prometheus.HistogramVec
	assignmentsTotal  *prometheus.CounterVec
	batchSkipped      prometheus.Counter
	batchAssignRate   prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Gauge) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assignment_latency_seconds",
			Help:    "Latency of provider assignment operations against the store",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assignments_total",
			Help: "Number of provider assignment attempts",
		},
		[]string{"mode", "outcome"},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auto_assign_skipped_total",
			Help: "Jobs left unassigned by auto-assign runs",
		},
	)
	rate := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "auto_assign_rate",
			Help: "Fraction of jobs assigned in the last auto-assign run",
		},
	)
	return lat, total, skipped, rate
}

func init() {
	assignmentLatency, assignmentsTotal, batchSkipped, batchAssignRate = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers assignment metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(assignmentLatency, assignmentsTotal, batchSkipped, batchAssignRate)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	assignmentLatency, assignmentsTotal, batchSkipped, batchAssignRate = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
