package assign

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mjoly/fieldops/core/model"
)

// Strategy ranks the candidate pool for one job, best candidate first. The
// engine walks the ranking until a reservation sticks.
type Strategy interface {
	Name() string
	Rank(job model.Job, pool []model.Provider) []model.Provider
}

// Balanced minimises travel distance and spreads work across the fleet.
// Distance is the primary criterion; providers reporting the same known
// distance are ordered by a workload score so busy providers yield to idle
// ones. Providers without a reported distance rank last and keep the store's
// declaration order.
type Balanced struct {
	// RatingWeight discounts the workload score for highly rated providers.
	RatingWeight float64
}

// NewBalanced returns the strategy with its default weights.
func NewBalanced() Balanced {
	return Balanced{RatingWeight: 0.1}
}

// Name implements Strategy.
func (Balanced) Name() string { return "balanced" }

// Rank implements Strategy.
func (b Balanced) Rank(_ model.Job, pool []model.Provider) []model.Provider {
	known := make([]model.Provider, 0, len(pool))
	unknown := make([]model.Provider, 0)
	for _, p := range pool {
		if p.DistanceKnown() {
			known = append(known, p)
		} else {
			unknown = append(unknown, p)
		}
	}

	scores := b.loadScores(known)
	sort.SliceStable(known, func(i, j int) bool {
		if known[i].DistanceKM != known[j].DistanceKM {
			return known[i].DistanceKM < known[j].DistanceKM
		}
		return scores[known[i].ID] < scores[known[j].ID]
	})
	return append(known, unknown...)
}

// loadScores normalises today's job counts across the pool so the tie-break
// stays comparable between small and large fleets. A provider's score grows
// with its workload and shrinks with its rating.
func (b Balanced) loadScores(pool []model.Provider) map[string]float64 {
	counts := make([]float64, len(pool))
	for i, p := range pool {
		counts[i] = float64(p.TodayJobCount)
	}
	mean, std := stat.MeanStdDev(counts, nil)
	scores := make(map[string]float64, len(pool))
	for i, p := range pool {
		z := 0.0
		if std > 0 {
			z = (counts[i] - mean) / std
		}
		scores[p.ID] = z - b.RatingWeight*p.Rating
	}
	return scores
}
