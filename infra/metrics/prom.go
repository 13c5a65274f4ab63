package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mjoly/fieldops/core/metrics"
)

// PromSink records dispatch events in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	batchSize   prometheus.Gauge
	statuses    *prometheus.CounterVec
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_assignment_events_total",
		Help: "Total number of provider binding attempts",
	}, []string{"mode", "success"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldops_assignment_duration_seconds",
		Help:    "Time spent binding a provider to a job",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	batchSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fieldops_batch_assigned_jobs",
		Help: "Jobs assigned by the last auto-assign run",
	})
	statuses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_status_transitions_total",
		Help: "Total number of job lifecycle transition attempts",
	}, []string{"to", "rejected"})

	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(batchSize); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			batchSize = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(statuses); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			statuses = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{assignments: assignments, latency: latency, batchSize: batchSize, statuses: statuses}, nil
}

// RecordAssignment increments the counter for each binding attempt.
func (s *PromSink) RecordAssignment(records []coremetrics.AssignmentRecord) error {
	for _, r := range records {
		s.assignments.WithLabelValues(r.Mode, strconv.FormatBool(r.Error == "")).Inc()
		s.latency.WithLabelValues(r.Mode).Observe(r.Latency.Seconds())
	}
	return nil
}

// RecordBatch sets the gauge to the size of the last auto-assign run.
func (s *PromSink) RecordBatch(rec coremetrics.BatchRecord) error {
	if s.batchSize != nil {
		s.batchSize.Set(float64(rec.Assigned))
	}
	return nil
}

// RecordStatusChange counts lifecycle transitions by target status.
func (s *PromSink) RecordStatusChange(rec coremetrics.StatusRecord) error {
	s.statuses.WithLabelValues(rec.To, strconv.FormatBool(rec.Rejected)).Inc()
	return nil
}
