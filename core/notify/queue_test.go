package notify

import (
	"fmt"
	"testing"

	"github.com/mjoly/fieldops/core/model"
)

func TestQueue_VisibleCap(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Push(model.SeverityInfo, fmt.Sprintf("n%d", i), "")
	}
	vis := q.Visible()
	if len(vis) != 3 {
		t.Fatalf("expected 3 visible got %d", len(vis))
	}
	// Newest first, oldest dropped from visibility only.
	if vis[0].Title != "n4" || vis[2].Title != "n2" {
		t.Errorf("wrong visibility window: %v", vis)
	}
	if q.Len() != 5 {
		t.Errorf("older entries must be retained, got %d", q.Len())
	}
}

func TestQueue_VisibleShort(t *testing.T) {
	q := NewQueue()
	q.Push(model.SeveritySuccess, "only", "")
	vis := q.Visible()
	if len(vis) != 1 || vis[0].Title != "only" {
		t.Fatalf("unexpected visible set: %v", vis)
	}
}

func TestQueue_Dismiss(t *testing.T) {
	q := NewQueue()
	n := q.Push(model.SeverityError, "boom", "assignment failed")
	q.Push(model.SeverityInfo, "other", "")
	if !q.Dismiss(n.ID) {
		t.Fatal("dismiss of existing entry failed")
	}
	if q.Dismiss(n.ID) {
		t.Fatal("dismiss of removed entry should report false")
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 entry left got %d", q.Len())
	}
}

func TestQueue_UniqueIDs(t *testing.T) {
	q := NewQueue()
	a := q.Push(model.SeverityInfo, "a", "")
	b := q.Push(model.SeverityInfo, "b", "")
	if a.ID == b.ID || a.ID == "" {
		t.Fatalf("ids must be unique and non-empty: %q %q", a.ID, b.ID)
	}
}
