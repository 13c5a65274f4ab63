package model

import "time"

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is an ephemeral, session-scoped operational message. It is
// never persisted past the session that produced it.
type Notification struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Time     time.Time `json:"time"`
}
