package grants

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

// Source reads grant notices from an RSS/Atom feed.
type Source struct {
	feedURL string
	client  *http.Client
	parser  *gofeed.Parser
	logger  *slog.Logger
}

var _ source.DocumentFetcher = (*Source)(nil)

// NewSource wires the feed URL.
func NewSource(feedURL string, logger *slog.Logger) *Source {
	return &Source{
		feedURL: feedURL,
		client:  &http.Client{Timeout: 20 * time.Second},
		parser:  gofeed.NewParser(),
		logger:  logger,
	}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "grants"
}

// FetchRecent parses the feed and keeps items published inside the window.
// Items without a parseable publication date are skipped.
func (s *Source) FetchRecent(ctx context.Context, w source.Window) ([]domain.Document, error) {
	if s.feedURL == "" {
		return nil, fmt.Errorf("no grants feed configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "ChiefOfStaff/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grants feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	feed, err := s.parser.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var docs []domain.Document
	for _, item := range feed.Items {
		if item.PublishedParsed == nil {
			s.logger.Debug("item skipped, no publication date", "title", item.Title)
			continue
		}
		ts := float64(item.PublishedParsed.Unix())
		if !w.Contains(ts) {
			continue
		}

		author := ""
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			author = item.Authors[0].Name
		}

		docs = append(docs, domain.Document{
			Title:     item.Title,
			Link:      item.Link,
			Author:    author,
			Abstract:  item.Description,
			Source:    feed.Title,
			Published: ts,
		})
	}

	s.logger.Info("grants fetched", "documents", len(docs))
	return docs, nil
}
