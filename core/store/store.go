package store

import (
	"context"
	"time"

	"github.com/mjoly/fieldops/core/model"
)

// JobStore is the job side of the backing data store. The store owns
// persistence and transactional semantics; this core only issues commands
// against it.
type JobStore interface {
	// Jobs returns all jobs scheduled for the given date, including
	// assignment and status.
	Jobs(ctx context.Context, date time.Time) ([]model.Job, error)

	// Job returns a single job or ErrJobNotFound.
	Job(ctx context.Context, id string) (model.Job, error)

	// BindProvider sets or clears (providerID == "") the job's assigned
	// provider and returns the updated record. Binding over an existing
	// different binding fails with ErrJobAlreadyAssigned, so racing
	// assignments resolve to exactly one winner. It never changes status.
	BindProvider(ctx context.Context, jobID, providerID string) (model.Job, error)

	// SetStatus persists a validated status transition and returns the
	// updated record.
	SetStatus(ctx context.Context, jobID string, status model.JobStatus) (model.Job, error)
}

// ProviderStore exposes provider availability, including the one atomic
// primitive this core relies on for cross-session exclusion.
type ProviderStore interface {
	// Providers returns providers, optionally restricted to dispatchable
	// ones.
	Providers(ctx context.Context, availableOnly bool) ([]model.Provider, error)

	// Reserve atomically flips the provider to unavailable and records the
	// job binding. It fails with ErrAlreadyReserved when the provider was
	// reserved between read and write; this is the compare-and-set the
	// whole assignment path depends on.
	Reserve(ctx context.Context, providerID, jobID string) error

	// Release makes the provider available again. Releasing an already
	// available provider is a no-op, not an error.
	Release(ctx context.Context, providerID string) error
}

// TeamStore provides grouping and planning context for display. Out of the
// dispatch core's write path.
type TeamStore interface {
	Teams(ctx context.Context) ([]model.Team, error)
	Schedule(ctx context.Context, from, to time.Time, providerID, teamID string) ([]model.ScheduleEntry, error)
}

// Store bundles the three contracts the backend satisfies.
type Store interface {
	JobStore
	ProviderStore
	TeamStore
}
