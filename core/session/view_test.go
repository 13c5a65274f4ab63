package session

import (
	"testing"
	"time"

	"github.com/mjoly/fieldops/core/model"
)

func TestView_LastObservationWins(t *testing.T) {
	v := NewView()
	v.ApplyJob(model.Job{ID: "j1", Status: model.StatusScheduled})
	v.ApplyJob(model.Job{ID: "j1", Status: model.StatusEnRoute})
	j, ok := v.Job("j1")
	if !ok || j.Status != model.StatusEnRoute {
		t.Fatalf("expected en_route got %#v", j)
	}
}

func TestView_SnapshotReplaces(t *testing.T) {
	v := NewView()
	v.ApplyJob(model.Job{ID: "stale", Status: model.StatusScheduled})
	v.ApplySnapshot([]model.Job{{ID: "fresh", Status: model.StatusScheduled}}, []model.Provider{{ID: "p1"}})
	if _, ok := v.Job("stale"); ok {
		t.Fatal("snapshot must replace the job set")
	}
	if _, ok := v.Job("fresh"); !ok {
		t.Fatal("snapshot job missing")
	}
	if len(v.Providers()) != 1 {
		t.Fatalf("expected 1 provider got %d", len(v.Providers()))
	}
}

func TestView_NilSnapshotSideKeepsState(t *testing.T) {
	v := NewView()
	v.ApplyProvider(model.Provider{ID: "p1"})
	v.ApplySnapshot([]model.Job{{ID: "j1"}}, nil)
	if len(v.Providers()) != 1 {
		t.Fatal("nil provider snapshot must not wipe providers")
	}
	v.ApplySnapshot([]model.Job{}, nil)
	if len(v.Jobs()) != 0 {
		t.Fatal("empty job snapshot must clear jobs")
	}
}

func TestView_JobsOrderedByStart(t *testing.T) {
	v := NewView()
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	v.ApplyJob(model.Job{ID: "b", StartTime: base.Add(time.Hour)})
	v.ApplyJob(model.Job{ID: "a", StartTime: base})
	v.ApplyJob(model.Job{ID: "c", StartTime: base.Add(time.Hour)})
	jobs := v.Jobs()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if jobs[i].ID != id {
			t.Fatalf("expected order %v got %v", want, jobs)
		}
	}
}

func TestView_ReadsAreCopies(t *testing.T) {
	v := NewView()
	v.ApplyJob(model.Job{ID: "j1", Status: model.StatusScheduled})
	jobs := v.Jobs()
	jobs[0].Status = model.StatusCancelled
	j, _ := v.Job("j1")
	if j.Status != model.StatusScheduled {
		t.Fatal("mutating a read slice must not change the view")
	}
}

func TestView_Updates(t *testing.T) {
	v := NewView()
	ch := v.Updates()
	v.ApplyJob(model.Job{ID: "j1"})
	select {
	case u := <-ch:
		if u.Entity != "job" {
			t.Fatalf("expected job update got %q", u.Entity)
		}
	default:
		t.Fatal("no update published")
	}
	v.Close()
}
