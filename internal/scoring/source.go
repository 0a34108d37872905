package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

// ScoredSource adapts a document source into a message source: fetch, score,
// rank-filter, then render the survivors as canonical messages. The scored
// documents are owned by the rank filter until this conversion; afterwards
// only the messages travel downstream.
type ScoredSource struct {
	docs     source.DocumentFetcher
	scorer   *Scorer
	filter   RankFilter
	platform string
	logger   *slog.Logger
}

var _ source.Fetcher = (*ScoredSource)(nil)

// NewScoredSource wraps a document source with the scoring pipeline.
func NewScoredSource(docs source.DocumentFetcher, scorer *Scorer, filter RankFilter, platform string, logger *slog.Logger) *ScoredSource {
	return &ScoredSource{
		docs:     docs,
		scorer:   scorer,
		filter:   filter,
		platform: platform,
		logger:   logger,
	}
}

// Name keeps the wrapped source's registry name.
func (s *ScoredSource) Name() string {
	return s.docs.Name()
}

// Fetch pulls documents for the window, scores each, and returns the ranked
// survivors as messages. Per-document evaluation failures exclude only that
// document.
func (s *ScoredSource) Fetch(ctx context.Context, w source.Window) ([]domain.Message, error) {
	docs, err := s.docs.FetchRecent(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	scored := make([]domain.Scored, 0, len(docs))
	for _, doc := range docs {
		result, ok := s.scorer.Score(ctx, doc)
		if !ok {
			continue
		}
		scored = append(scored, result)
	}

	ranked := s.filter.Apply(scored)
	if s.logger != nil {
		s.logger.Info("documents ranked",
			"source", s.Name(), "fetched", len(docs), "scored", len(scored), "kept", len(ranked))
	}

	messages := make([]domain.Message, 0, len(ranked))
	for _, doc := range ranked {
		messages = append(messages, s.render(doc))
	}
	return messages, nil
}

func (s *ScoredSource) render(doc domain.Scored) domain.Message {
	marker := ""
	if doc.HighSignal {
		marker = "BREAKTHROUGH: "
	}

	text := fmt.Sprintf("%s[%d/100] %s\n%s\n%s",
		marker, doc.Score, doc.Document.Title, doc.Justification, doc.Document.Link)

	return domain.Message{
		Platform:  s.platform,
		Channel:   doc.Document.Source,
		Sender:    doc.Document.Author,
		Text:      text,
		Timestamp: doc.Document.Published,
	}
}
