package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/core/store"
)

func newStore(providers ...model.Provider) *store.MemoryStore {
	s := store.NewMemoryStore()
	for _, p := range providers {
		s.PutProvider(p)
	}
	return s
}

func TestListAvailable_Ordering(t *testing.T) {
	s := newStore(
		model.Provider{ID: "far", IsActive: true, IsAvailable: true, DistanceKM: 12},
		model.Provider{ID: "unknown", IsActive: true, IsAvailable: true, DistanceKM: model.UnknownDistance},
		model.Provider{ID: "near", IsActive: true, IsAvailable: true, DistanceKM: 1.2},
		model.Provider{ID: "offduty", IsActive: false, IsAvailable: true, DistanceKM: 0.1},
		model.Provider{ID: "busy", IsActive: true, IsAvailable: false, CurrentJobID: "j9", DistanceKM: 0.2},
	)
	r := New(s)
	out, err := r.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	want := []string{"near", "far", "unknown"}
	if len(out) != len(want) {
		t.Fatalf("expected %d providers got %d", len(want), len(out))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d: expected %s got %s", i, id, out[i].ID)
		}
	}
}

func TestListAvailable_UnknownDistanceStableOrder(t *testing.T) {
	s := newStore(
		model.Provider{ID: "u1", IsActive: true, IsAvailable: true, DistanceKM: model.UnknownDistance},
		model.Provider{ID: "u2", IsActive: true, IsAvailable: true, DistanceKM: model.UnknownDistance},
		model.Provider{ID: "u3", IsActive: true, IsAvailable: true, DistanceKM: model.UnknownDistance},
	)
	r := New(s)
	out, err := r.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	for i, id := range []string{"u1", "u2", "u3"} {
		if out[i].ID != id {
			t.Errorf("declaration order not preserved: %v", out)
		}
	}
}

func TestReserve_Race(t *testing.T) {
	s := newStore(model.Provider{ID: "p1", IsActive: true, IsAvailable: true})
	r := New(s)
	if err := r.Reserve(context.Background(), "p1", "j1"); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	err := r.Reserve(context.Background(), "p1", "j2")
	if !errors.Is(err, store.ErrAlreadyReserved) {
		t.Fatalf("expected ErrAlreadyReserved got %v", err)
	}
}

func TestRelease_Idempotent(t *testing.T) {
	s := newStore(model.Provider{ID: "p1", IsActive: true, IsAvailable: true})
	r := New(s)
	if err := r.Release(context.Background(), "p1"); err != nil {
		t.Fatalf("release of available provider must be a no-op: %v", err)
	}
	if err := r.Reserve(context.Background(), "p1", "j1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := r.Release(context.Background(), "p1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := r.Release(context.Background(), "p1"); err != nil {
		t.Fatalf("second release must be a no-op: %v", err)
	}
	// Availability must mirror the cleared binding.
	ps, err := s.Providers(context.Background(), true)
	if err != nil || len(ps) != 1 {
		t.Fatalf("provider should be available again: %v %v", ps, err)
	}
	if ps[0].CurrentJobID != "" {
		t.Errorf("current job not cleared: %q", ps[0].CurrentJobID)
	}
}
