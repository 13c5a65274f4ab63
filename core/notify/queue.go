// Package notify implements the session-local feed of operational
// notifications. Entries are append-only and never leave the session;
// only the newest few are rendered.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mjoly/fieldops/core/model"
)

// DefaultVisible is how many entries are rendered at once. Older entries stay
// in the queue but are not shown.
const DefaultVisible = 3

// Notifier receives the outcome of explicit dispatcher actions. Background
// refresh paths never call it.
type Notifier interface {
	Push(severity model.Severity, title, message string) model.Notification
}

// Nop discards notifications. Used in tests and batch tooling.
type Nop struct{}

func (Nop) Push(severity model.Severity, title, message string) model.Notification {
	return model.Notification{Severity: severity, Title: title, Message: message}
}

// Queue is a bounded-display notification feed for one dispatcher session.
type Queue struct {
	mu      sync.Mutex
	entries []model.Notification
	visible int
	now     func() time.Time
}

// NewQueue creates a queue rendering DefaultVisible entries.
func NewQueue() *Queue {
	return &Queue{visible: DefaultVisible, now: time.Now}
}

// Push appends a new notification and returns it.
func (q *Queue) Push(severity model.Severity, title, message string) model.Notification {
	n := model.Notification{
		ID:       uuid.NewString(),
		Title:    title,
		Message:  message,
		Severity: severity,
		Time:     q.now(),
	}
	q.mu.Lock()
	q.entries = append(q.entries, n)
	q.mu.Unlock()
	return n
}

// Visible returns the newest entries, most recent first, capped at the
// display limit.
func (q *Queue) Visible() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.entries)
	limit := q.visible
	if limit > n {
		limit = n
	}
	out := make([]model.Notification, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, q.entries[i])
	}
	return out
}

// All returns every retained entry in append order.
func (q *Queue) All() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.Notification(nil), q.entries...)
}

// Dismiss removes the entry with the given id. It reports whether an entry
// was found; dismissing never touches job or provider state.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.entries {
		if n.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of retained entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
