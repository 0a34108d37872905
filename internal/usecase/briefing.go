package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ChiefOfStaff/internal/corpus"
	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/ports"
	"ChiefOfStaff/internal/retry"
	"ChiefOfStaff/internal/source"
)

// Deps wires the driven adapters into the briefing workflow.
type Deps struct {
	Registry     *source.Registry
	Summarizer   ports.Summarizer
	Retry        retry.Policy
	OutputDir    string
	Instructions string
	Logger       *slog.Logger
}

// Briefing implements the aggregation-scoring-summarization run.
type Briefing struct {
	registry     *source.Registry
	summarizer   ports.Summarizer
	retry        retry.Policy
	outputDir    string
	instructions string
	logger       *slog.Logger
}

// Result carries the run's artifacts.
type Result struct {
	Narrative    string
	SnapshotPath string
	Messages     int
}

// NewBriefing constructs the orchestration component.
func NewBriefing(deps Deps) *Briefing {
	return &Briefing{
		registry:     deps.Registry,
		summarizer:   deps.Summarizer,
		retry:        deps.Retry,
		outputDir:    deps.OutputDir,
		instructions: deps.Instructions,
		logger:       deps.Logger,
	}
}

// Run fetches every selected source, merges in registration order, persists
// the snapshot, and drives the summarization call through the retry policy.
// An empty corpus surfaces corpus.ErrNoSignal before any invocation happens.
func (b *Briefing) Run(ctx context.Context, day time.Time, w source.Window, sourceNames []string) (Result, error) {
	sources, err := b.registry.Select(sourceNames)
	if err != nil {
		return Result{}, err
	}

	merged, err := b.aggregate(ctx, sources, w)
	if err != nil {
		return Result{}, err
	}

	snapshotPath, err := corpus.WriteSnapshot(b.outputDir, day, merged)
	if err != nil {
		return Result{}, err
	}
	b.logger.Info("corpus snapshot written", "path", snapshotPath, "messages", len(merged))

	payload, err := corpus.MarshalPayload(merged)
	if err != nil {
		return Result{}, err
	}

	narrative, err := b.retry.Invoke(ctx, func(ctx context.Context) (string, error) {
		return b.summarizer.Summarize(ctx, b.instructions, payload)
	})
	if err != nil {
		// The snapshot survives a failed invocation so the run can be
		// replayed against the same input.
		return Result{}, fmt.Errorf("summarize corpus (snapshot kept at %s): %w", snapshotPath, err)
	}

	return Result{Narrative: narrative, SnapshotPath: snapshotPath, Messages: len(merged)}, nil
}

// aggregate fetches all sources concurrently. Each goroutine owns exactly one
// slot of the result slice and the WaitGroup is the single join barrier, so
// the merge order is the registration order no matter which fetch finishes
// first. A failing source is logged and contributes nothing; it never aborts
// the merge.
func (b *Briefing) aggregate(ctx context.Context, sources []source.Fetcher, w source.Window) ([]domain.Message, error) {
	results := make([][]domain.Message, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src source.Fetcher) {
			defer wg.Done()
			messages, err := src.Fetch(ctx, w)
			if err != nil {
				b.logger.Warn("source unavailable", "source", src.Name(), "error", err)
				return
			}
			b.logger.Info("source fetched", "source", src.Name(), "messages", len(messages))
			results[i] = messages
		}(i, src)
	}
	wg.Wait()

	return corpus.Assemble(results)
}
