// Package session keeps one dispatcher session's view of the operational
// state consistent. Two sources feed it: change events pushed as they occur
// and a fixed-interval reconciliation poll that refetches everything. Both
// write through the same merge functions, so staleness is bounded by one
// poll interval even when the push channel drops events.
package session

import (
	"sort"
	"sync"

	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/internal/eventbus"
)

// Update tells view subscribers which entity kind changed.
type Update struct {
	Entity string // "job", "provider" or "snapshot"
}

// View is the session-local, immutable-on-read state. It is only mutated
// through the Apply methods; readers always get copies. The most recently
// observed value per entity wins, regardless of which source delivered it.
type View struct {
	mu        sync.RWMutex
	jobs      map[string]model.Job
	providers map[string]model.Provider
	updates   *eventbus.TypedBus[Update]
}

// NewView creates an empty View.
func NewView() *View {
	return &View{
		jobs:      make(map[string]model.Job),
		providers: make(map[string]model.Provider),
		updates:   eventbus.NewTyped[Update](),
	}
}

// ApplyJob merges one observed job record.
func (v *View) ApplyJob(j model.Job) {
	v.mu.Lock()
	v.jobs[j.ID] = j
	v.mu.Unlock()
	v.updates.Publish(Update{Entity: "job"})
}

// ApplyProvider merges one observed provider record.
func (v *View) ApplyProvider(p model.Provider) {
	v.mu.Lock()
	v.providers[p.ID] = p
	v.mu.Unlock()
	v.updates.Publish(Update{Entity: "provider"})
}

// ApplySnapshot replaces the whole view with a freshly polled state. A nil
// slice leaves the corresponding entity set untouched, so a partial poll
// cannot wipe known state.
func (v *View) ApplySnapshot(jobs []model.Job, providers []model.Provider) {
	v.mu.Lock()
	if jobs != nil {
		v.jobs = make(map[string]model.Job, len(jobs))
		for _, j := range jobs {
			v.jobs[j.ID] = j
		}
	}
	if providers != nil {
		v.providers = make(map[string]model.Provider, len(providers))
		for _, p := range providers {
			v.providers[p.ID] = p
		}
	}
	v.mu.Unlock()
	v.updates.Publish(Update{Entity: "snapshot"})
}

// Job returns the job by id, if observed.
func (v *View) Job(id string) (model.Job, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	j, ok := v.jobs[id]
	return j, ok
}

// Jobs returns every observed job ordered by start time, then id.
func (v *View) Jobs() []model.Job {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]model.Job, 0, len(v.jobs))
	for _, j := range v.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].StartTime.Equal(out[k].StartTime) {
			return out[i].StartTime.Before(out[k].StartTime)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

// Providers returns every observed provider ordered by id.
func (v *View) Providers() []model.Provider {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]model.Provider, 0, len(v.providers))
	for _, p := range v.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// Updates registers a subscriber notified after every merge.
func (v *View) Updates() <-chan Update {
	return v.updates.Subscribe()
}

// Close tears down the update fan-out.
func (v *View) Close() {
	v.updates.Close()
}
