package assign

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mjoly/fieldops/core/events"
	"github.com/mjoly/fieldops/core/logger"
	"github.com/mjoly/fieldops/core/metrics"
	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/core/notify"
	"github.com/mjoly/fieldops/core/registry"
	"github.com/mjoly/fieldops/core/store"
	"github.com/mjoly/fieldops/internal/eventbus"
)

// BatchResult is the aggregate outcome of one auto-assign run. Partial
// success is the normal, expected outcome, not an error condition.
type BatchResult struct {
	Assigned int `json:"assigned"`
	Total    int `json:"total"`
}

// Engine binds providers to jobs. Every public method resolves to exactly
// one success-or-failure notification and leaves persisted state untouched
// on failure.
type Engine struct {
	jobs     store.JobStore
	registry *registry.Registry
	strategy Strategy
	bus      eventbus.EventBus
	notifier notify.Notifier
	metrics  metrics.Sink
	log      logger.Logger
	now      func() time.Time
}

// NewEngine creates an Engine. bus, notifier and sink may be nil.
func NewEngine(jobs store.JobStore, reg *registry.Registry, strategy Strategy, bus eventbus.EventBus, notifier notify.Notifier, sink metrics.Sink, log logger.Logger) (*Engine, error) {
	if jobs == nil || reg == nil {
		return nil, fmt.Errorf("assign: nil store provided to NewEngine")
	}
	if strategy == nil {
		strategy = NewBalanced()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		jobs:     jobs,
		registry: reg,
		strategy: strategy,
		bus:      bus,
		notifier: notifier,
		metrics:  sink,
		log:      log,
		now:      time.Now,
	}, nil
}

// Assign binds the provider to the job. It fails with ErrJobAlreadyAssigned
// when the job already has a provider; use Reassign for an explicit swap.
// Assignment never changes the job's status.
func (e *Engine) Assign(ctx context.Context, jobID, providerID string) (model.Job, error) {
	return e.assignNotified(ctx, jobID, providerID, "manual", false)
}

// Reassign swaps the job's provider: the current binding is dissolved before
// the new provider is reserved. Always permitted regardless of the current
// assignment state.
func (e *Engine) Reassign(ctx context.Context, jobID, providerID string) (model.Job, error) {
	return e.assignNotified(ctx, jobID, providerID, "reassign", true)
}

// Unassign dissolves the job's current binding, releasing the provider.
// Unassigning an unassigned job succeeds as a no-op.
func (e *Engine) Unassign(ctx context.Context, jobID string) (model.Job, error) {
	start := e.now()
	job, err := e.unassign(ctx, jobID)
	e.record("unassign", jobID, "", err, e.now().Sub(start))
	if err != nil {
		e.notifier.Push(model.SeverityError, "Unassign failed", fmt.Sprintf("Job %s: %v", jobID, err))
		return model.Job{}, err
	}
	e.notifier.Push(model.SeveritySuccess, "Provider unassigned", fmt.Sprintf("Job %s is unassigned", jobID))
	return job, nil
}

// AutoAssign runs one batch over the unassigned, non-terminal jobs of the
// given day, walking them in urgency order. Jobs that find no provider are
// skipped, not failed; the batch never aborts on a lost reservation race.
func (e *Engine) AutoAssign(ctx context.Context, date time.Time) (BatchResult, error) {
	jobs, err := e.jobs.Jobs(ctx, date)
	if err != nil {
		err = fmt.Errorf("snapshot jobs: %w", err)
		e.notifier.Push(model.SeverityError, "Auto-assign failed", err.Error())
		return BatchResult{}, err
	}
	pool, err := e.registry.ListAvailable(ctx)
	if err != nil {
		err = fmt.Errorf("snapshot providers: %w", err)
		e.notifier.Push(model.SeverityError, "Auto-assign failed", err.Error())
		return BatchResult{}, err
	}

	pending := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if !j.Assigned() && !j.Status.Terminal() {
			pending = append(pending, j)
		}
	}
	sortByPriority(pending)

	res := BatchResult{Total: len(pending)}
	for _, job := range pending {
		if len(pool) == 0 {
			break
		}
		ranked := e.strategy.Rank(job, pool)
		bound := ""
		for _, candidate := range ranked {
			_, err := e.assign(ctx, job.ID, candidate.ID, true, false)
			if err == nil {
				bound = candidate.ID
				break
			}
			if errors.Is(err, store.ErrProviderUnavailable) {
				// Lost to a concurrent manual assignment; drop the provider
				// from this batch's pool and try the next candidate.
				pool = removeProvider(pool, candidate.ID)
				continue
			}
			// Job-side failure: skip the job, keep the pool intact.
			e.log.Warnf("auto-assign: job %s skipped: %v", job.ID, err)
			break
		}
		if bound != "" {
			res.Assigned++
			pool = removeProvider(pool, bound)
		} else {
			batchSkipped.Inc()
		}
	}

	if res.Total > 0 {
		batchAssignRate.Set(float64(res.Assigned) / float64(res.Total))
	}
	e.log.Infof("auto-assign (%s): %d of %d jobs assigned", e.strategy.Name(), res.Assigned, res.Total)
	if e.bus != nil {
		e.bus.Publish(events.BatchEvent{Strategy: e.strategy.Name(), Assigned: res.Assigned, Total: res.Total})
	}
	if br, ok := e.metrics.(metrics.BatchRecorder); ok {
		if err := br.RecordBatch(metrics.BatchRecord{Strategy: e.strategy.Name(), Assigned: res.Assigned, Total: res.Total, Time: e.now()}); err != nil {
			e.log.Errorf("batch metrics error: %v", err)
		}
	}
	e.notifier.Push(model.SeveritySuccess, "Auto-assign complete",
		fmt.Sprintf("Assigned %d of %d jobs", res.Assigned, res.Total))
	return res, nil
}

// assignNotified wraps assign with the one-notification-per-action contract.
func (e *Engine) assignNotified(ctx context.Context, jobID, providerID, mode string, reassign bool) (model.Job, error) {
	start := e.now()
	job, err := e.assign(ctx, jobID, providerID, false, reassign)
	e.record(mode, jobID, providerID, err, e.now().Sub(start))
	if err != nil {
		e.notifier.Push(model.SeverityError, "Assignment failed",
			fmt.Sprintf("Job %s, provider %s: %v", jobID, providerID, err))
		return model.Job{}, err
	}
	e.notifier.Push(model.SeveritySuccess, "Provider assigned",
		fmt.Sprintf("Provider %s assigned to job %s", providerID, jobID))
	return job, nil
}

// assign performs the all-or-nothing bind. In batch mode the caller handles
// notifications and metrics aggregation.
func (e *Engine) assign(ctx context.Context, jobID, providerID string, batch, reassign bool) (model.Job, error) {
	job, err := e.jobs.Job(ctx, jobID)
	if err != nil {
		return model.Job{}, err
	}
	if job.Status.Terminal() {
		return model.Job{}, fmt.Errorf("%w: job is %s", store.ErrInvalidTransition, job.Status)
	}
	if job.Assigned() && !reassign {
		return model.Job{}, fmt.Errorf("job %s: %w", jobID, store.ErrJobAlreadyAssigned)
	}

	provider, err := e.registry.Get(ctx, providerID)
	if err != nil {
		return model.Job{}, err
	}
	if !provider.Dispatchable() {
		return model.Job{}, fmt.Errorf("provider %s: %w", providerID, store.ErrProviderUnavailable)
	}

	if reassign && job.Assigned() {
		// Dissolve the old binding before any new reservation.
		if _, err := e.unassign(ctx, jobID); err != nil {
			return model.Job{}, err
		}
	}

	if err := e.registry.Reserve(ctx, providerID, jobID); err != nil {
		if errors.Is(err, store.ErrAlreadyReserved) {
			// Lost the race; surface it, the dispatcher may retry.
			err = fmt.Errorf("provider %s: %w", providerID, store.ErrProviderUnavailable)
		}
		return model.Job{}, err
	}

	updated, err := e.jobs.BindProvider(ctx, jobID, providerID)
	if err != nil {
		// All-or-nothing: the reservation must not outlive a failed bind.
		if rerr := e.registry.Release(ctx, providerID); rerr != nil {
			e.log.Errorf("rollback release of %s: %v", providerID, rerr)
		}
		return model.Job{}, err
	}

	if e.bus != nil {
		e.bus.Publish(events.AssignmentEvent{JobID: jobID, ProviderID: providerID, Reassign: reassign, Batch: batch})
		e.bus.Publish(events.JobEvent{Type: events.ChangeUpdate, Job: updated})
	}
	return updated, nil
}

func (e *Engine) unassign(ctx context.Context, jobID string) (model.Job, error) {
	job, err := e.jobs.Job(ctx, jobID)
	if err != nil {
		return model.Job{}, err
	}
	if !job.Assigned() {
		return job, nil
	}
	if err := e.registry.Release(ctx, job.ProviderID); err != nil {
		return model.Job{}, err
	}
	updated, err := e.jobs.BindProvider(ctx, jobID, "")
	if err != nil {
		return model.Job{}, err
	}
	if e.bus != nil {
		e.bus.Publish(events.AssignmentEvent{JobID: jobID, ProviderID: ""})
		e.bus.Publish(events.JobEvent{Type: events.ChangeUpdate, Job: updated})
	}
	return updated, nil
}

// record feeds the prometheus collectors and the configured sink.
func (e *Engine) record(mode, jobID, providerID string, err error, latency time.Duration) {
	outcome := "success"
	errStr := ""
	if err != nil {
		outcome = "error"
		errStr = err.Error()
	}
	assignmentsTotal.WithLabelValues(mode, outcome).Inc()
	assignmentLatency.WithLabelValues(mode).Observe(latency.Seconds())
	rec := metrics.AssignmentRecord{
		JobID:      jobID,
		ProviderID: providerID,
		Mode:       mode,
		Error:      errStr,
		Latency:    latency,
		Time:       e.now(),
	}
	if serr := e.metrics.RecordAssignment([]metrics.AssignmentRecord{rec}); serr != nil {
		e.log.Errorf("assignment metrics error: %v", serr)
	}
}

// sortByPriority orders jobs by urgency rank (high first), ties broken by
// earliest start time.
func sortByPriority(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		ri, rj := jobs[i].Urgency.Rank(), jobs[j].Urgency.Rank()
		if ri != rj {
			return ri < rj
		}
		return jobs[i].StartTime.Before(jobs[j].StartTime)
	})
}

func removeProvider(pool []model.Provider, id string) []model.Provider {
	for i, p := range pool {
		if p.ID == id {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
