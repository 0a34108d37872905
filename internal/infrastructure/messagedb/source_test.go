package messagedb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"ChiefOfStaff/internal/source"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const fixtureSchema = `
CREATE TABLE message (
	ROWID INTEGER PRIMARY KEY,
	text TEXT,
	date REAL,
	handle_id INTEGER
);
CREATE TABLE handle (
	ROWID INTEGER PRIMARY KEY,
	id TEXT
);
CREATE TABLE chat (
	ROWID INTEGER PRIMARY KEY,
	chat_identifier TEXT
);
CREATE TABLE chat_message_join (
	chat_id INTEGER,
	message_id INTEGER
);`

// appleSeconds converts a wall-clock time to the database's 2001 epoch.
func appleSeconds(t time.Time) float64 {
	return float64(t.Unix()) - appleEpochOffset
}

func newFixtureDB(t *testing.T) (string, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chat.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(fixtureSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return path, db
}

func TestFetchReadsWindowedMessages(t *testing.T) {
	t.Parallel()

	path, db := newFixtureDB(t)

	now := time.Now()
	recent := appleSeconds(now.Add(-2 * time.Hour))
	recentNanos := appleSeconds(now.Add(-1*time.Hour)) * 1e9
	stale := appleSeconds(now.Add(-72 * time.Hour))

	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO handle (ROWID, id) VALUES (1, '+15551234567')`, nil},
		{`INSERT INTO chat (ROWID, chat_identifier) VALUES (1, 'family')`, nil},
		{`INSERT INTO message (ROWID, text, date, handle_id) VALUES (1, 'seconds row', ?, 1)`, []any{recent}},
		{`INSERT INTO message (ROWID, text, date, handle_id) VALUES (2, 'nanoseconds row', ?, NULL)`, []any{recentNanos}},
		{`INSERT INTO message (ROWID, text, date, handle_id) VALUES (3, 'too old', ?, 1)`, []any{stale}},
		{`INSERT INTO message (ROWID, text, date, handle_id) VALUES (4, '', ?, 1)`, []any{recent}},
		{`INSERT INTO chat_message_join (chat_id, message_id) VALUES (1, 1)`, nil},
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}

	src := NewSource(path, discard())
	msgs, err := src.Fetch(context.Background(), source.LastHours(24))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("expected 2 windowed messages, got %d", len(msgs))
	}
	if msgs[0].Text != "seconds row" {
		t.Fatalf("expected date-ascending order, got %q first", msgs[0].Text)
	}
	if msgs[0].Sender != "+15551234567" || msgs[0].Channel != "family" {
		t.Fatalf("unexpected envelope: %+v", msgs[0])
	}
	if msgs[1].Text != "nanoseconds row" {
		t.Fatalf("expected the nanosecond row included, got %q", msgs[1].Text)
	}
	if msgs[1].Sender != "Me" || msgs[1].Channel != "Direct" {
		t.Fatalf("expected sender and chat fallbacks, got %+v", msgs[1])
	}
	if msgs[0].Platform != "iMessage" {
		t.Fatalf("unexpected platform: %q", msgs[0].Platform)
	}
}

func TestFetchMissingDatabase(t *testing.T) {
	t.Parallel()

	src := NewSource(filepath.Join(t.TempDir(), "absent.db"), discard())
	if _, err := src.Fetch(context.Background(), source.LastHours(24)); err == nil {
		t.Fatal("expected an error for a missing database file")
	}
}

func TestFetchNoPathConfigured(t *testing.T) {
	t.Parallel()

	src := NewSource("", discard())
	if _, err := src.Fetch(context.Background(), source.LastHours(24)); err == nil {
		t.Fatal("expected an error with no database configured")
	}
}

func TestAppleToUnix(t *testing.T) {
	t.Parallel()

	// Second-resolution rows pass through; nanosecond rows are scaled first.
	if got := appleToUnix(700000000); got != 700000000+appleEpochOffset {
		t.Fatalf("unexpected seconds conversion: %v", got)
	}
	if got := appleToUnix(700000000 * 1e9); got != 700000000+appleEpochOffset {
		t.Fatalf("unexpected nanoseconds conversion: %v", got)
	}
}
