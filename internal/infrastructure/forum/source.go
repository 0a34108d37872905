package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

// Source scans a Discourse forum's latest-topics endpoint. Topics whose title
// carries one of the configured keywords are flagged as alpha so the briefing
// can surface them prominently.
type Source struct {
	feedURL  string
	keywords []string
	client   *http.Client
	logger   *slog.Logger
}

var _ source.Fetcher = (*Source)(nil)

// NewSource wires the latest.json URL and the keyword list.
func NewSource(feedURL string, keywords []string, logger *slog.Logger) *Source {
	return &Source{
		feedURL:  feedURL,
		keywords: keywords,
		client:   &http.Client{Timeout: 20 * time.Second},
		logger:   logger,
	}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "forum"
}

type latestResponse struct {
	TopicList struct {
		Topics []struct {
			ID                 int    `json:"id"`
			Title              string `json:"title"`
			Slug               string `json:"slug"`
			CreatedAt          string `json:"created_at"`
			Views              int    `json:"views"`
			LastPosterUsername string `json:"last_poster_username"`
		} `json:"topics"`
	} `json:"topic_list"`
}

// Fetch returns window-bounded topics as messages. A topic with an
// unparseable creation date is skipped.
func (s *Source) Fetch(ctx context.Context, w source.Window) ([]domain.Message, error) {
	if s.feedURL == "" {
		return nil, fmt.Errorf("no forum url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forum: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forum returned %s", resp.Status)
	}

	var latest latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return nil, fmt.Errorf("decode forum response: %w", err)
	}

	base := topicBase(s.feedURL)
	var messages []domain.Message
	for _, topic := range latest.TopicList.Topics {
		created, err := time.Parse(time.RFC3339, topic.CreatedAt)
		if err != nil {
			s.logger.Debug("topic skipped, bad created_at", "id", topic.ID)
			continue
		}
		ts := float64(created.Unix())
		if !w.Contains(ts) {
			continue
		}

		text := fmt.Sprintf("%s (%d views)\n%s/t/%s/%d", topic.Title, topic.Views, base, topic.Slug, topic.ID)
		if s.matchesKeyword(topic.Title) {
			text = "ALPHA: " + text
		}

		messages = append(messages, domain.Message{
			Platform:  "Forum",
			Channel:   "governance",
			Sender:    topic.LastPosterUsername,
			Text:      text,
			Timestamp: ts,
		})
	}

	s.logger.Info("forum fetched", "messages", len(messages))
	return messages, nil
}

func (s *Source) matchesKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range s.keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func topicBase(feedURL string) string {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
