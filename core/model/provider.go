package model

import "fmt"

// UnknownDistance marks a provider whose distance to the job site is not
// reported. Providers with unknown distance rank after every provider with a
// known one.
const UnknownDistance = -1

// Provider represents a field provider that can be bound to jobs.
// Availability mirrors the job side of the relation: IsAvailable is true
// exactly when CurrentJobID is empty. Only the assignment engine flips these
// two fields, and always together.
type Provider struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	IsActive      bool    `json:"is_active"`
	IsAvailable   bool    `json:"is_available"`
	CurrentJobID  string  `json:"current_job_id,omitempty"`
	Location      string  `json:"location,omitempty"`
	DistanceKM    float64 `json:"distance_km"` // UnknownDistance when not reported
	ETAMinutes    int     `json:"eta_minutes,omitempty"`
	TodayJobCount int     `json:"today_job_count"`
	Rating        float64 `json:"rating,omitempty"`
}

// Dispatchable reports whether the provider can take a new job right now.
func (p Provider) Dispatchable() bool { return p.IsActive && p.IsAvailable }

// DistanceKnown reports whether the provider reported a usable distance.
func (p Provider) DistanceKnown() bool { return p.DistanceKM >= 0 }

// Validate checks internal consistency of the provider record.
func (p Provider) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("provider id is required")
	}
	if p.IsAvailable && p.CurrentJobID != "" {
		return fmt.Errorf("provider %s available but bound to job %s", p.ID, p.CurrentJobID)
	}
	return nil
}
