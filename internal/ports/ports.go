package ports

import (
	"context"

	"ChiefOfStaff/internal/domain"
)

// Evaluator sends one document to the external evaluation capability
// configured with the weighted rubric.
type Evaluator interface {
	Evaluate(ctx context.Context, doc domain.Document) (domain.Scored, error)
}

// Summarizer turns the assembled corpus into the briefing narrative.
type Summarizer interface {
	Summarize(ctx context.Context, instructions string, corpus []byte) (string, error)
}

// CatalogSearcher queries the entity catalog. No ordering guarantee is assumed
// from the provider; the resolver sorts candidates itself.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) ([]domain.CatalogEntry, error)
}

// Notifier delivers the finished briefing to an outbound channel.
type Notifier interface {
	PublishBriefing(ctx context.Context, briefing string) error
}
