package store

import (
	"context"
	"sync"
	"time"

	"github.com/mjoly/fieldops/core/model"
)

// MemoryStore is an in-memory Store used by tests and local tooling. The
// reserve primitive has the same atomicity as the hosted backend: one mutex
// guards the check and the write.
type MemoryStore struct {
	mu        sync.Mutex
	jobs      map[string]model.Job
	providers map[string]model.Provider
	order     []string // provider declaration order, kept for stable listings
	teams     []model.Team
	schedule  []model.ScheduleEntry
	err       error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:      make(map[string]model.Job),
		providers: make(map[string]model.Provider),
	}
}

// SetError makes every subsequent call fail with err until cleared with nil.
// Used to simulate an unreachable backend.
func (s *MemoryStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// PutJob inserts or replaces a job record.
func (s *MemoryStore) PutJob(j model.Job) {
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
}

// PutProvider inserts or replaces a provider record.
func (s *MemoryStore) PutProvider(p model.Provider) {
	s.mu.Lock()
	if _, ok := s.providers[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.providers[p.ID] = p
	s.mu.Unlock()
}

// PutTeam inserts a team record.
func (s *MemoryStore) PutTeam(t model.Team) {
	s.mu.Lock()
	s.teams = append(s.teams, t)
	s.mu.Unlock()
}

// PutSchedule inserts a schedule entry.
func (s *MemoryStore) PutSchedule(e model.ScheduleEntry) {
	s.mu.Lock()
	s.schedule = append(s.schedule, e)
	s.mu.Unlock()
}

func (s *MemoryStore) Jobs(_ context.Context, date time.Time) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Job
	for _, j := range s.jobs {
		if sameDay(j.StartTime, date) || date.IsZero() {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *MemoryStore) Job(_ context.Context, id string) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Job{}, s.err
	}
	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	return j, nil
}

func (s *MemoryStore) BindProvider(_ context.Context, jobID, providerID string) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Job{}, s.err
	}
	j, ok := s.jobs[jobID]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	if providerID != "" && j.ProviderID != "" && j.ProviderID != providerID {
		return model.Job{}, ErrJobAlreadyAssigned
	}
	j.ProviderID = providerID
	j.UpdatedAt = time.Now()
	s.jobs[jobID] = j
	return j, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, jobID string, status model.JobStatus) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Job{}, s.err
	}
	j, ok := s.jobs[jobID]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	j.Status = status
	j.UpdatedAt = time.Now()
	s.jobs[jobID] = j
	return j, nil
}

func (s *MemoryStore) Providers(_ context.Context, availableOnly bool) ([]model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Provider, 0, len(s.order))
	for _, id := range s.order {
		p := s.providers[id]
		if availableOnly && !p.Dispatchable() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Reserve implements the compare-and-set on provider availability.
func (s *MemoryStore) Reserve(_ context.Context, providerID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p, ok := s.providers[providerID]
	if !ok {
		return ErrProviderUnavailable
	}
	if !p.IsAvailable {
		return ErrAlreadyReserved
	}
	p.IsAvailable = false
	p.CurrentJobID = jobID
	s.providers[providerID] = p
	return nil
}

func (s *MemoryStore) Release(_ context.Context, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p, ok := s.providers[providerID]
	if !ok {
		return nil
	}
	p.IsAvailable = true
	p.CurrentJobID = ""
	s.providers[providerID] = p
	return nil
}

func (s *MemoryStore) Teams(_ context.Context) ([]model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]model.Team(nil), s.teams...), nil
}

func (s *MemoryStore) Schedule(_ context.Context, from, to time.Time, providerID, teamID string) ([]model.ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.ScheduleEntry
	for _, e := range s.schedule {
		if providerID != "" && e.ProviderID != providerID {
			continue
		}
		if teamID != "" && e.TeamID != teamID {
			continue
		}
		if !from.IsZero() && e.End.Before(from) {
			continue
		}
		if !to.IsZero() && e.Start.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
