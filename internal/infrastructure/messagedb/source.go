package messagedb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

// appleEpochOffset converts the Messages database epoch (2001-01-01 UTC) to
// unix seconds.
const appleEpochOffset = 978307200

// nanosecondThreshold separates second-resolution rows (older macOS) from
// nanosecond-resolution rows. No plausible second count crosses it.
const nanosecondThreshold = 1e12

// Source reads the local iMessage chat database. The file belongs to the
// Messages app; this adapter opens it read-only and never writes.
type Source struct {
	dbPath string
	logger *slog.Logger
}

var _ source.Fetcher = (*Source)(nil)

// NewSource points the adapter at a chat.db file.
func NewSource(dbPath string, logger *slog.Logger) *Source {
	return &Source{dbPath: dbPath, logger: logger}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "imessage"
}

// Fetch queries window-bounded messages joined with their sender handle and
// chat. A row with unreadable columns is skipped, not fatal.
func (s *Source) Fetch(ctx context.Context, w source.Window) ([]domain.Message, error) {
	if s.dbPath == "" {
		return nil, fmt.Errorf("no imessage database configured")
	}
	if _, err := os.Stat(s.dbPath); err != nil {
		return nil, fmt.Errorf("message database unavailable: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open message database: %w", err)
	}
	defer db.Close()

	// The cutoff is expressed in Apple-epoch seconds; nanosecond rows pass it
	// trivially and are re-filtered after conversion.
	appleCutoff := w.Cutoff() - appleEpochOffset

	query, args, err := sq.Select("m.text", "m.date", "h.id", "c.chat_identifier").
		From("message m").
		LeftJoin("handle h ON h.ROWID = m.handle_id").
		LeftJoin("chat_message_join cmj ON cmj.message_id = m.ROWID").
		LeftJoin("chat c ON c.ROWID = cmj.chat_id").
		Where(sq.Gt{"m.date": appleCutoff}).
		Where("m.text IS NOT NULL AND m.text != ''").
		OrderBy("m.date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			text   string
			date   float64
			handle sql.NullString
			chat   sql.NullString
		)
		if err := rows.Scan(&text, &date, &handle, &chat); err != nil {
			s.logger.Debug("row skipped", "error", err)
			continue
		}

		ts := appleToUnix(date)
		if !w.Contains(ts) {
			continue
		}

		sender := "Me"
		if handle.Valid && handle.String != "" {
			sender = handle.String
		}
		channel := "Direct"
		if chat.Valid && chat.String != "" {
			channel = chat.String
		}

		messages = append(messages, domain.Message{
			Platform:  "iMessage",
			Channel:   channel,
			Sender:    sender,
			Text:      text,
			Timestamp: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	s.logger.Info("imessage fetched", "messages", len(messages))
	return messages, nil
}

// appleToUnix normalizes either resolution of the Messages epoch to unix
// seconds.
func appleToUnix(date float64) float64 {
	if date > nanosecondThreshold {
		date = date / 1e9
	}
	return date + appleEpochOffset
}
