package events

import "github.com/mjoly/fieldops/core/model"

// ChangeType distinguishes inserts from updates on the push channel.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
)

// JobEvent is published whenever a job record changes, either observed on the
// push channel or produced locally by the engine.
type JobEvent struct {
	Type ChangeType
	Job  model.Job
}

// ProviderEvent is published whenever a provider record changes.
type ProviderEvent struct {
	Type     ChangeType
	Provider model.Provider
}
