package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/ports"
)

// ErrNotFound is returned when no candidate matches the query. Callers treat
// it as "no match", not as a retryable failure.
var ErrNotFound = errors.New("no catalog entry matched")

// worstRank sorts unranked entries after every real rank. An absent rank is a
// usable fallback here, not an exclusion; the scorer makes the opposite call
// for absent scores because a defaulted score would corrupt ranking.
const worstRank = 999999

// Resolver disambiguates a free-text query against the ranked catalog.
type Resolver struct {
	searcher ports.CatalogSearcher
	logger   *slog.Logger
}

// New wires the catalog search capability.
func New(searcher ports.CatalogSearcher, logger *slog.Logger) *Resolver {
	return &Resolver{searcher: searcher, logger: logger}
}

// Resolve returns the canonical ID of the best-ranked candidate. The sort is
// stable, so candidates sharing the best rank keep the provider's original
// response order and the first one wins.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	entries, err := r.searcher.Search(ctx, query)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("catalog search failed", "query", query, "error", err)
		}
		return "", ErrNotFound
	}
	if len(entries) == 0 {
		return "", ErrNotFound
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return effectiveRank(entries[i]) < effectiveRank(entries[j])
	})

	return entries[0].ID, nil
}

func effectiveRank(e domain.CatalogEntry) int {
	if e.Rank == nil {
		return worstRank
	}
	return *e.Rank
}
