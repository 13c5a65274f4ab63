package metrics

import "time"

// AssignmentRecord is one provider binding attempt to be recorded.
type AssignmentRecord struct {
	JobID      string
	ProviderID string
	Mode       string // "manual", "reassign", "unassign" or "auto"
	Error      string
	Latency    time.Duration
	Time       time.Time
}

// BatchRecord summarises one auto-assign run.
type BatchRecord struct {
	Strategy string
	Assigned int
	Total    int
	Time     time.Time
}

// StatusRecord is one lifecycle transition attempt.
type StatusRecord struct {
	JobID    string
	From     string
	To       string
	Rejected bool
	Time     time.Time
}

// Sink records assignment outcomes for observability purposes.
type Sink interface {
	RecordAssignment(records []AssignmentRecord) error
}

// BatchRecorder is implemented by sinks able to record batch summaries.
type BatchRecorder interface {
	RecordBatch(rec BatchRecord) error
}

// StatusRecorder is implemented by sinks able to record lifecycle changes.
type StatusRecorder interface {
	RecordStatusChange(rec StatusRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignment([]AssignmentRecord) error { return nil }
func (NopSink) RecordBatch(BatchRecord) error             { return nil }
func (NopSink) RecordStatusChange(StatusRecord) error     { return nil }
