package scoring

import (
	"sort"

	"ChiefOfStaff/internal/domain"
)

// RankFilter orders scored documents and applies both thresholds. The floor
// excludes noise; the ceiling tags genuine breakthroughs for presentation
// without filtering anything further. A single threshold would either
// over-include marginal items or leave breakthroughs visually
// indistinguishable.
type RankFilter struct {
	Floor   int
	Ceiling int
}

// NewRankFilter applies the documented defaults when a threshold is left
// unset.
func NewRankFilter(floor, ceiling int) RankFilter {
	if floor <= 0 {
		floor = 10
	}
	if ceiling <= 0 {
		ceiling = 50
	}
	return RankFilter{Floor: floor, Ceiling: ceiling}
}

// Apply sorts descending by score (stable, so ties keep arrival order), drops
// documents below the floor, and marks documents above the ceiling as
// high-signal.
func (f RankFilter) Apply(scored []domain.Scored) []domain.Scored {
	ordered := make([]domain.Scored, len(scored))
	copy(ordered, scored)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	kept := make([]domain.Scored, 0, len(ordered))
	for _, doc := range ordered {
		if doc.Score < f.Floor {
			continue
		}
		doc.HighSignal = doc.Score > f.Ceiling
		kept = append(kept, doc)
	}
	return kept
}
