package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/mjoly/fieldops/core/metrics"
)

func TestPromSink_RecordAssignment(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	sink := s.(*PromSink)

	recs := []coremetrics.AssignmentRecord{
		{JobID: "j1", ProviderID: "p1", Mode: "manual", Latency: 10 * time.Millisecond},
		{JobID: "j2", Mode: "auto", Error: "provider unavailable"},
	}
	if err := sink.RecordAssignment(recs); err != nil {
		t.Fatalf("record: %v", err)
	}

	expected := `
# HELP fieldops_assignment_events_total Total number of provider binding attempts
# TYPE fieldops_assignment_events_total counter
fieldops_assignment_events_total{mode="auto",success="false"} 1
fieldops_assignment_events_total{mode="manual",success="true"} 1
`
	if err := testutil.CollectAndCompare(sink.assignments, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected counters: %v", err)
	}
	if c := testutil.CollectAndCount(sink.latency); c == 0 {
		t.Errorf("latency histogram empty")
	}
}

func TestPromSink_RecordBatchAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	sink := s.(*PromSink)

	if err := sink.RecordBatch(coremetrics.BatchRecord{Assigned: 4, Total: 6}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	expected := `
# HELP fieldops_batch_assigned_jobs Jobs assigned by the last auto-assign run
# TYPE fieldops_batch_assigned_jobs gauge
fieldops_batch_assigned_jobs 4
`
	if err := testutil.CollectAndCompare(sink.batchSize, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected gauge: %v", err)
	}

	if err := sink.RecordStatusChange(coremetrics.StatusRecord{JobID: "j1", From: "scheduled", To: "en_route"}); err != nil {
		t.Fatalf("status: %v", err)
	}
	if c := testutil.CollectAndCount(sink.statuses); c != 1 {
		t.Errorf("expected 1 status series, got %d", c)
	}
}

func TestPromSink_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second register must reuse collectors: %v", err)
	}
}
