// Package registry tracks field provider availability on top of the backing
// store's atomic reserve primitive.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/core/store"
)

// Registry exposes availability queries and the reserve/release pair. All
// mutual exclusion lives in the store's compare-and-set; the registry never
// caches availability across it.
type Registry struct {
	providers store.ProviderStore
}

// New creates a Registry backed by the given provider store.
func New(providers store.ProviderStore) *Registry {
	return &Registry{providers: providers}
}

// ListAvailable returns providers that are on duty and not bound to a job,
// ordered by ascending distance. Providers without a reported distance sort
// after every provider with one; ties keep the store's declaration order.
func (r *Registry) ListAvailable(ctx context.Context) ([]model.Provider, error) {
	all, err := r.providers.Providers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	out := make([]model.Provider, 0, len(all))
	for _, p := range all {
		if p.Dispatchable() {
			out = append(out, p)
		}
	}
	SortByDistance(out)
	return out, nil
}

// Get returns the provider record or store.ErrProviderUnavailable when the
// id is unknown.
func (r *Registry) Get(ctx context.Context, providerID string) (model.Provider, error) {
	all, err := r.providers.Providers(ctx, false)
	if err != nil {
		return model.Provider{}, fmt.Errorf("list providers: %w", err)
	}
	for _, p := range all {
		if p.ID == providerID {
			return p, nil
		}
	}
	return model.Provider{}, fmt.Errorf("provider %s: %w", providerID, store.ErrProviderUnavailable)
}

// SortByDistance orders providers by ascending distance with unknown
// distances last. The sort is stable so equal distances keep their incoming
// order.
func SortByDistance(providers []model.Provider) {
	sort.SliceStable(providers, func(i, j int) bool {
		pi, pj := providers[i], providers[j]
		switch {
		case pi.DistanceKnown() && !pj.DistanceKnown():
			return true
		case !pi.DistanceKnown() && pj.DistanceKnown():
			return false
		case !pi.DistanceKnown():
			return false
		default:
			return pi.DistanceKM < pj.DistanceKM
		}
	})
}

// Reserve binds the provider to the job via the store's compare-and-set.
// A lost race surfaces as store.ErrAlreadyReserved.
func (r *Registry) Reserve(ctx context.Context, providerID, jobID string) error {
	if err := r.providers.Reserve(ctx, providerID, jobID); err != nil {
		return fmt.Errorf("reserve provider %s: %w", providerID, err)
	}
	return nil
}

// Release frees the provider. Releasing an already available provider is a
// no-op.
func (r *Registry) Release(ctx context.Context, providerID string) error {
	if err := r.providers.Release(ctx, providerID); err != nil {
		return fmt.Errorf("release provider %s: %w", providerID, err)
	}
	return nil
}
