package model

import "time"

// Team groups providers for display and scheduling context. Teams are managed
// by the backend; the dispatch core only reads them.
type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	LeadID    string   `json:"lead_id,omitempty"`
	MemberIDs []string `json:"member_ids"`
}

// ScheduleEntry is one provider/job pairing on the planning board.
type ScheduleEntry struct {
	JobID      string    `json:"job_id"`
	ProviderID string    `json:"provider_id"`
	TeamID     string    `json:"team_id,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}
