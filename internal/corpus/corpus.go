package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"ChiefOfStaff/internal/domain"
)

// ErrNoSignal reports an empty corpus. It is a distinct terminal outcome, not
// a failure: the sources were reachable, they just had nothing to say.
var ErrNoSignal = errors.New("no signal: every source returned zero messages")

// Assemble concatenates per-source results in the fixed source-registration
// order. Timestamp ordering is deliberately not applied; presentation ordering
// belongs to the summarization capability.
func Assemble(perSource [][]domain.Message) ([]domain.Message, error) {
	total := 0
	for _, msgs := range perSource {
		total += len(msgs)
	}
	if total == 0 {
		return nil, ErrNoSignal
	}

	merged := make([]domain.Message, 0, total)
	for _, msgs := range perSource {
		merged = append(merged, msgs...)
	}
	return merged, nil
}

// snapshot is the persisted artifact schema.
type snapshot struct {
	RunDate  string           `json:"run_date"`
	RunID    string           `json:"run_id"`
	Messages []domain.Message `json:"messages"`
}

// WriteSnapshot serializes the corpus to a dated JSON artifact and returns
// its path. The filename is a deterministic function of the run date, so a
// same-date re-run overwrites the previous snapshot; that is accepted. The
// run ID entropy is seeded from the date, which keeps identical inputs
// serializing byte-identically and the snapshot replayable.
func WriteSnapshot(dir string, day time.Time, messages []domain.Message) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	date := day.Format("2006-01-02")
	entropy := rand.New(rand.NewSource(day.Truncate(24 * time.Hour).Unix()))
	snap := snapshot{
		RunDate:  date,
		RunID:    ulid.MustNew(ulid.Timestamp(day.Truncate(24*time.Hour)), entropy).String(),
		Messages: messages,
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("daily_dump_%s.json", date))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// MarshalPayload renders the corpus as the JSON blob handed to the
// summarization capability.
func MarshalPayload(messages []domain.Message) ([]byte, error) {
	payload, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal corpus: %w", err)
	}
	return payload, nil
}
