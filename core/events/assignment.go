package events

import "time"

// AssignmentEvent is published for each provider binding attempt, manual or
// within an auto-assign batch.
type AssignmentEvent struct {
	JobID      string
	ProviderID string
	Reassign   bool
	Batch      bool
	Err        error
	Latency    time.Duration
}

// BatchEvent summarises one auto-assign run.
type BatchEvent struct {
	Strategy string
	Assigned int
	Total    int
}
