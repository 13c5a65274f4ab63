package model

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a service job.
type JobStatus string

const (
	StatusScheduled  JobStatus = "scheduled"
	StatusEnRoute    JobStatus = "en_route"
	StatusInProgress JobStatus = "in_progress"
	StatusCompleted  JobStatus = "completed"
	StatusCancelled  JobStatus = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusEnRoute, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s JobStatus) String() string { return string(s) }

// Urgency is an advisory priority hint. It orders auto-assignment but does
// not change transition rules.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Rank maps urgency to a sortable integer, highest urgency first (0).
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	default:
		return 2
	}
}

// Customer identifies the person and place a job is performed for.
type Customer struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// Job represents one scheduled service visit. A job holds at most one
// assigned provider at any time; completed and cancelled jobs are terminal
// and immutable.
type Job struct {
	ID          string        `json:"id"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
	Service     string        `json:"service"`
	PriceCents  int64         `json:"price_cents"`
	Customer    Customer      `json:"customer"`
	ProviderID  string        `json:"provider_id,omitempty"` // empty when unassigned
	Status      JobStatus     `json:"status"`
	Urgency     Urgency       `json:"urgency"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Assigned reports whether a provider is currently bound to the job.
func (j Job) Assigned() bool { return j.ProviderID != "" }

// Validate checks that the job record is sound.
func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if !j.Status.Valid() {
		return fmt.Errorf("unknown status %q", j.Status)
	}
	return nil
}
