// Package status enforces the job lifecycle state machine.
//
// The lifecycle is strictly forward:
//
//	scheduled -> en_route -> in_progress -> completed
//
// with cancelled reachable from any non-terminal state. No forward step may
// be skipped, and terminal states accept no further transitions.
package status

import (
	"context"
	"fmt"

	"github.com/mjoly/fieldops/core/events"
	"github.com/mjoly/fieldops/core/logger"
	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/core/notify"
	"github.com/mjoly/fieldops/core/registry"
	"github.com/mjoly/fieldops/core/store"
	"github.com/mjoly/fieldops/internal/eventbus"
)

// CanTransition reports whether (from, to) is an edge of the lifecycle graph.
func CanTransition(from, to model.JobStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == model.StatusCancelled {
		return true
	}
	switch from {
	case model.StatusScheduled:
		return to == model.StatusEnRoute
	case model.StatusEnRoute:
		return to == model.StatusInProgress
	case model.StatusInProgress:
		return to == model.StatusCompleted
	}
	return false
}

// Machine validates and applies lifecycle transitions against the job store.
type Machine struct {
	jobs     store.JobStore
	registry *registry.Registry
	bus      eventbus.EventBus
	notifier notify.Notifier
	log      logger.Logger
}

// NewMachine creates a Machine. bus and notifier may be nil for headless use.
func NewMachine(jobs store.JobStore, reg *registry.Registry, bus eventbus.EventBus, notifier notify.Notifier, log logger.Logger) *Machine {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Machine{jobs: jobs, registry: reg, bus: bus, notifier: notifier, log: log}
}

// Transition moves the job to target. On success the new status is persisted
// and, when target is terminal, the bound provider is released. On any
// failure the store is left untouched. Exactly one notification is produced
// either way.
func (m *Machine) Transition(ctx context.Context, jobID string, target model.JobStatus) (model.Job, error) {
	job, err := m.jobs.Job(ctx, jobID)
	if err != nil {
		return model.Job{}, m.fail(jobID, "", target, err)
	}
	if !target.Valid() {
		err := fmt.Errorf("%w: unknown status %q", store.ErrInvalidTransition, target)
		return model.Job{}, m.fail(jobID, job.Status, target, err)
	}
	if !CanTransition(job.Status, target) {
		err := fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, job.Status, target)
		return model.Job{}, m.fail(jobID, job.Status, target, err)
	}

	updated, err := m.jobs.SetStatus(ctx, jobID, target)
	if err != nil {
		return model.Job{}, m.fail(jobID, job.Status, target, err)
	}

	if target.Terminal() && job.ProviderID != "" {
		if err := m.registry.Release(ctx, job.ProviderID); err != nil {
			// The status is already persisted; the provider release will be
			// retried by the next reconciliation of the backend.
			m.log.Errorf("release provider %s after terminal %s: %v", job.ProviderID, target, err)
		}
	}

	m.log.Infof("job %s: %s -> %s", jobID, job.Status, target)
	if m.bus != nil {
		m.bus.Publish(events.StatusEvent{JobID: jobID, From: job.Status, To: target})
		m.bus.Publish(events.JobEvent{Type: events.ChangeUpdate, Job: updated})
	}
	m.notifier.Push(model.SeveritySuccess, "Status updated",
		fmt.Sprintf("Job %s is now %s", jobID, target))
	return updated, nil
}

// fail publishes the rejected transition and converts it into exactly one
// error notification.
func (m *Machine) fail(jobID string, from, to model.JobStatus, err error) error {
	m.log.Warnf("job %s: transition to %s rejected: %v", jobID, to, err)
	if m.bus != nil {
		m.bus.Publish(events.StatusEvent{JobID: jobID, From: from, To: to, Err: err})
	}
	m.notifier.Push(model.SeverityError, "Status change failed",
		fmt.Sprintf("Job %s: %v", jobID, err))
	return err
}
