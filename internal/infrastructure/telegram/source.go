package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

const defaultAPIBase = "https://api.telegram.org"

// Source pulls recent dialog messages through the bot API.
type Source struct {
	botToken string
	apiBase  string
	client   *http.Client
	logger   *slog.Logger
	limit    int
}

var _ source.Fetcher = (*Source)(nil)

// NewSource wires the bot token.
func NewSource(botToken string, logger *slog.Logger) *Source {
	return &Source{
		botToken: botToken,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 20 * time.Second},
		logger:   logger,
		limit:    100,
	}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "telegram"
}

type updatesResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      []struct {
		Message *struct {
			From *struct {
				FirstName string `json:"first_name"`
			} `json:"from"`
			Chat struct {
				Title     string `json:"title"`
				FirstName string `json:"first_name"`
				Type      string `json:"type"`
			} `json:"chat"`
			Date int64  `json:"date"`
			Text string `json:"text"`
		} `json:"message"`
	} `json:"result"`
}

// Fetch returns window-bounded text messages from recent updates. Telegram
// dates are already unix seconds.
func (s *Source) Fetch(ctx context.Context, w source.Window) ([]domain.Message, error) {
	if s.botToken == "" {
		return nil, fmt.Errorf("no telegram credentials configured")
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(s.limit))

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", s.apiBase, s.botToken, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned %s", resp.Status)
	}

	var updates updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !updates.OK {
		return nil, fmt.Errorf("telegram error: %s", updates.Description)
	}

	var messages []domain.Message
	for _, update := range updates.Result {
		msg := update.Message
		if msg == nil || msg.Text == "" {
			continue
		}
		ts := float64(msg.Date)
		if !w.Contains(ts) {
			continue
		}

		sender := "Unknown"
		if msg.From != nil && msg.From.FirstName != "" {
			sender = msg.From.FirstName
		}
		channel := msg.Chat.Title
		if channel == "" {
			channel = msg.Chat.FirstName
		}

		messages = append(messages, domain.Message{
			Platform:  "Telegram",
			Channel:   channel,
			Sender:    sender,
			Text:      msg.Text,
			Timestamp: ts,
		})
	}

	s.logger.Info("telegram fetched", "messages", len(messages))
	return messages, nil
}
