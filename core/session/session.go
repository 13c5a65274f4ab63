package session

import (
	"context"
	"time"

	"github.com/mjoly/fieldops/core/events"
	"github.com/mjoly/fieldops/core/logger"
	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/core/store"
	"github.com/mjoly/fieldops/internal/eventbus"
)

// DefaultPollInterval bounds staleness when push events are missed.
const DefaultPollInterval = 30 * time.Second

// Config defines session refresh settings loaded from configuration.
type Config struct {
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = int(DefaultPollInterval / time.Second)
	}
}

// Interval returns the poll interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Session merges the push channel and the reconciliation poll into one view
// for a single dispatcher. Closing the context tears down the subscription
// and the poll timer; in-flight engine calls are left to complete.
type Session struct {
	view     *View
	jobs     store.JobStore
	provs    store.ProviderStore
	bus      eventbus.EventBus
	date     time.Time
	interval time.Duration
	log      logger.Logger
}

// New creates a Session for the given active day.
func New(view *View, jobs store.JobStore, provs store.ProviderStore, bus eventbus.EventBus, date time.Time, interval time.Duration, log logger.Logger) *Session {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Session{
		view:     view,
		jobs:     jobs,
		provs:    provs,
		bus:      bus,
		date:     date,
		interval: interval,
		log:      log,
	}
}

// View returns the session's local view.
func (s *Session) View() *View { return s.view }

// Run refreshes once, then consumes push events and polls on the configured
// interval until the context is cancelled. A failed poll is retried at the
// next tick without surfacing anything to the dispatcher: the next
// successful poll self-heals the view.
func (s *Session) Run(ctx context.Context) {
	s.poll(ctx)

	var sub <-chan eventbus.Event
	if s.bus != nil {
		sub = s.bus.Subscribe()
		defer s.bus.Unsubscribe(sub)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		case ev, ok := <-sub:
			if !ok {
				sub = nil
				continue
			}
			s.apply(ev)
		}
	}
}

// apply routes one push event into the view. Events outside the active day
// are dropped; the poll never sees them either.
func (s *Session) apply(ev eventbus.Event) {
	switch e := ev.(type) {
	case events.JobEvent:
		if !sameDay(e.Job.StartTime, s.date) {
			return
		}
		s.view.ApplyJob(e.Job)
	case events.ProviderEvent:
		s.view.ApplyProvider(e.Provider)
	}
}

// poll refetches both entity sets unconditionally and replaces the view.
func (s *Session) poll(ctx context.Context) {
	jobs, jerr := s.jobs.Jobs(ctx, s.date)
	if jerr != nil {
		s.log.Debugf("poll jobs: %v", jerr)
		jobs = nil
	} else if jobs == nil {
		jobs = []model.Job{}
	}
	providers, perr := s.provs.Providers(ctx, false)
	if perr != nil {
		s.log.Debugf("poll providers: %v", perr)
		providers = nil
	} else if providers == nil {
		providers = []model.Provider{}
	}
	if jerr != nil && perr != nil {
		return
	}
	s.view.ApplySnapshot(jobs, providers)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
