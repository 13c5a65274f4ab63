package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/mjoly/fieldops/core/metrics"
	"github.com/mjoly/fieldops/infra/logger"
)

// InfluxSink writes dispatch events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAssignment writes each binding attempt as line protocol events.
func (s *InfluxSink) RecordAssignment(records []coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("assignment_event").
			AddTag("job_id", r.JobID).
			AddTag("mode", r.Mode).
			AddTag("component", "assign_engine")
		if r.ProviderID != "" {
			p = p.AddTag("provider_id", r.ProviderID)
		}
		p = p.AddField("latency_ms", r.Latency.Seconds()*1000).
			AddField("errors", r.Error).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatch persists the summary of one auto-assign run.
func (s *InfluxSink) RecordBatch(rec coremetrics.BatchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("batch_assign_run").
		AddTag("strategy", rec.Strategy).
		AddTag("component", "assign_engine").
		AddField("assigned", rec.Assigned).
		AddField("total", rec.Total).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStatusChange writes one lifecycle transition attempt.
func (s *InfluxSink) RecordStatusChange(rec coremetrics.StatusRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("status_transition").
		AddTag("job_id", rec.JobID).
		AddTag("from", rec.From).
		AddTag("to", rec.To).
		AddTag("component", "status_machine").
		AddField("rejected", rec.Rejected).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying InfluxDB client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
