package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ChiefOfStaff/internal/domain"
)

func msg(platform, text string) domain.Message {
	return domain.Message{Platform: platform, Channel: "general", Sender: "dev", Text: text, Timestamp: 100}
}

func TestAssembleKeepsSourceOrder(t *testing.T) {
	t.Parallel()

	merged, err := Assemble([][]domain.Message{
		nil,
		{msg("Slack", "first"), msg("Slack", "second")},
		{msg("Gmail", "third")},
	})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	if len(merged) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(merged))
	}
	want := []string{"first", "second", "third"}
	for i, text := range want {
		if merged[i].Text != text {
			t.Fatalf("position %d: expected %q, got %q", i, text, merged[i].Text)
		}
	}
}

func TestAssembleEmptyIsNoSignal(t *testing.T) {
	t.Parallel()

	_, err := Assemble([][]domain.Message{nil, {}, nil})
	if !errors.Is(err, ErrNoSignal) {
		t.Fatalf("expected ErrNoSignal, got %v", err)
	}
}

func TestWriteSnapshotDeterministicFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	day := time.Date(2025, time.November, 8, 14, 30, 0, 0, time.UTC)

	path, err := WriteSnapshot(dir, day, []domain.Message{msg("Slack", "hello")})
	if err != nil {
		t.Fatalf("WriteSnapshot returned error: %v", err)
	}
	if filepath.Base(path) != "daily_dump_2025-11-08.json" {
		t.Fatalf("unexpected snapshot name: %s", filepath.Base(path))
	}

	var snap struct {
		RunDate  string           `json:"run_date"`
		RunID    string           `json:"run_id"`
		Messages []domain.Message `json:"messages"`
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snap.RunDate != "2025-11-08" || snap.RunID == "" || len(snap.Messages) != 1 {
		t.Fatalf("unexpected snapshot contents: %+v", snap)
	}
}

func TestWriteSnapshotSameDayIsByteIdentical(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	messages := []domain.Message{msg("Slack", "hello"), msg("Gmail", "world")}

	morning := time.Date(2025, time.November, 8, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.November, 8, 21, 0, 0, 0, time.UTC)

	first, err := WriteSnapshot(dir, morning, messages)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	before, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first snapshot: %v", err)
	}

	second, err := WriteSnapshot(dir, evening, messages)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same path for the same day, got %s and %s", first, second)
	}
	after, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second snapshot: %v", err)
	}

	if !bytes.Equal(before, after) {
		t.Fatal("expected same-day snapshots of the same corpus to be byte-identical")
	}
}

func TestMarshalPayloadRoundTrips(t *testing.T) {
	t.Parallel()

	payload, err := MarshalPayload([]domain.Message{msg("Slack", "hello")})
	if err != nil {
		t.Fatalf("MarshalPayload returned error: %v", err)
	}

	var decoded []domain.Message
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Text != "hello" {
		t.Fatalf("unexpected payload contents: %+v", decoded)
	}
}
