package scoring

import (
	"context"
	"log/slog"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/ports"
)

// Scorer evaluates documents against the weighted rubric. A failed or
// malformed evaluation excludes the document instead of scoring it zero: a
// zero would be indistinguishable from a genuinely low-relevance item and
// would corrupt the ranking statistics.
type Scorer struct {
	evaluator ports.Evaluator
	logger    *slog.Logger
}

// NewScorer wires the external evaluation capability.
func NewScorer(evaluator ports.Evaluator, logger *slog.Logger) *Scorer {
	return &Scorer{evaluator: evaluator, logger: logger}
}

// Score returns the scored document and true, or a zero value and false when
// the document is excluded.
func (s *Scorer) Score(ctx context.Context, doc domain.Document) (domain.Scored, bool) {
	scored, err := s.evaluator.Evaluate(ctx, doc)
	if err != nil {
		s.warn("evaluation failed, excluding document", "title", doc.Title, "error", err)
		return domain.Scored{}, false
	}
	if scored.Score < 0 || scored.Score > 100 {
		s.warn("score out of range, excluding document", "title", doc.Title, "score", scored.Score)
		return domain.Scored{}, false
	}
	return scored, true
}

func (s *Scorer) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
