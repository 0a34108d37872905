package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ChiefOfStaff/internal/ports"
)

// Emitter writes the briefing narrative to durable storage and to the
// operator stream, with an optional outbound delivery leg.
type Emitter struct {
	dir      string
	out      io.Writer
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewEmitter wires the output directory, the console stream, and an optional
// notifier (nil disables delivery).
func NewEmitter(dir string, out io.Writer, notifier ports.Notifier, logger *slog.Logger) *Emitter {
	return &Emitter{dir: dir, out: out, notifier: notifier, logger: logger}
}

// Emit persists the dated briefing file, prints the narrative, and delivers
// it if a notifier is configured. Delivery failure is logged, not fatal: the
// briefing already exists on disk at that point.
func (e *Emitter) Emit(ctx context.Context, day time.Time, narrative string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("daily_briefing_%s.md", day.Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(narrative), 0o644); err != nil {
		return "", fmt.Errorf("write briefing: %w", err)
	}

	rule := strings.Repeat("=", 50)
	fmt.Fprintf(e.out, "\n%s\nDAILY BRIEFING\n%s\n\n%s\n\n%s\n", rule, rule, narrative, rule)

	if e.notifier != nil {
		if err := e.notifier.PublishBriefing(ctx, narrative); err != nil {
			e.logger.Warn("briefing delivery failed", "error", err)
		}
	}

	return path, nil
}
