package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

// Source reads the inbox over the Gmail REST API. Obtaining and refreshing
// the OAuth token happens out of band; this adapter only consumes it.
type Source struct {
	accessToken string
	baseURL     string
	client      *http.Client
	logger      *slog.Logger
}

var _ source.Fetcher = (*Source)(nil)

// NewSource wires the access token.
func NewSource(accessToken string, logger *slog.Logger) *Source {
	return &Source{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		client:      &http.Client{Timeout: 20 * time.Second},
		logger:      logger,
	}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "gmail"
}

type listResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type messageResponse struct {
	Snippet      string `json:"snippet"`
	InternalDate string `json:"internalDate"`
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

// Fetch lists recent message IDs and loads each one. A single message that
// fails to load is skipped; its siblings still go through.
func (s *Source) Fetch(ctx context.Context, w source.Window) ([]domain.Message, error) {
	if s.accessToken == "" {
		return nil, fmt.Errorf("no gmail access token configured")
	}

	query := url.Values{}
	query.Set("q", newerThan(w))

	var list listResponse
	if err := s.get(ctx, "/users/me/messages?"+query.Encode(), &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var messages []domain.Message
	for _, meta := range list.Messages {
		var msg messageResponse
		if err := s.get(ctx, "/users/me/messages/"+meta.ID, &msg); err != nil {
			s.logger.Debug("message skipped", "id", meta.ID, "error", err)
			continue
		}

		subject := header(msg, "Subject", "(No Subject)")
		sender := header(msg, "From", "Unknown")
		text := fmt.Sprintf("Subject: %s\nSnippet: %s", subject, msg.Snippet)

		// internalDate is epoch milliseconds; the canonical model carries
		// seconds.
		millis, err := strconv.ParseInt(msg.InternalDate, 10, 64)
		if err != nil {
			s.logger.Debug("message skipped, bad internalDate", "id", meta.ID)
			continue
		}

		messages = append(messages, domain.Message{
			Platform:  "Gmail",
			Channel:   "Inbox",
			Sender:    sender,
			Text:      text,
			Timestamp: float64(millis) / 1000,
		})
	}

	s.logger.Info("gmail fetched", "messages", len(messages))
	return messages, nil
}

func (s *Source) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func header(msg messageResponse, name, fallback string) string {
	for _, h := range msg.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return fallback
}

// newerThan expresses the window as a Gmail search term, rounded up to whole
// days because that is the finest granularity the q parameter accepts.
func newerThan(w source.Window) string {
	hours := time.Since(w.Since).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}
	return fmt.Sprintf("newer_than:%dd", days)
}
