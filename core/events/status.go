package events

import "github.com/mjoly/fieldops/core/model"

// StatusEvent is published when a job lifecycle transition is applied or
// rejected.
type StatusEvent struct {
	JobID string
	From  model.JobStatus
	To    model.JobStatus
	Err   error
}
