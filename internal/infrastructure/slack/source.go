package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

const defaultBaseURL = "https://slack.com/api"

// Source fetches recent messages across every configured workspace. A failing
// channel is skipped, a failing workspace is logged and skipped; neither
// aborts the rest of the fetch.
type Source struct {
	workspaces map[string]string
	baseURL    string
	client     *http.Client
	logger     *slog.Logger

	channelLimit int
	historyLimit int
}

var _ source.Fetcher = (*Source)(nil)

// NewSource maps workspace names to tokens.
func NewSource(workspaces map[string]string, logger *slog.Logger) *Source {
	return &Source{
		workspaces:   workspaces,
		baseURL:      defaultBaseURL,
		client:       &http.Client{Timeout: 20 * time.Second},
		logger:       logger,
		channelLimit: 100,
		historyLimit: 20,
	}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "slack"
}

type listResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Channels []struct {
		ID             string `json:"id"`
		NameNormalized string `json:"name_normalized"`
		IsArchived     bool   `json:"is_archived"`
	} `json:"channels"`
}

type historyResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages []struct {
		User string `json:"user"`
		Text string `json:"text"`
		TS   string `json:"ts"`
	} `json:"messages"`
}

// Fetch walks each workspace's channels and collects window-bounded history.
func (s *Source) Fetch(ctx context.Context, w source.Window) ([]domain.Message, error) {
	if len(s.workspaces) == 0 {
		return nil, fmt.Errorf("no slack workspaces configured")
	}

	// Map iteration order is random; keep runs reproducible.
	names := make([]string, 0, len(s.workspaces))
	for name := range s.workspaces {
		names = append(names, name)
	}
	sort.Strings(names)

	var messages []domain.Message
	for _, name := range names {
		token := s.workspaces[name]
		if token == "" {
			s.logger.Info("skipping workspace, no token", "workspace", name)
			continue
		}

		found, err := s.fetchWorkspace(ctx, name, token, w)
		if err != nil {
			s.logger.Warn("workspace fetch failed", "workspace", name, "error", err)
			continue
		}
		messages = append(messages, found...)
	}
	return messages, nil
}

func (s *Source) fetchWorkspace(ctx context.Context, name, token string, w source.Window) ([]domain.Message, error) {
	query := url.Values{}
	query.Set("types", "public_channel,private_channel,im,mpim")
	query.Set("limit", strconv.Itoa(s.channelLimit))

	var channels listResponse
	if err := s.call(ctx, token, "conversations.list", query, &channels); err != nil {
		return nil, err
	}
	if !channels.OK {
		return nil, fmt.Errorf("conversations.list: %s", channels.Error)
	}

	platform := fmt.Sprintf("Slack (%s)", name)
	var messages []domain.Message
	for _, channel := range channels.Channels {
		if channel.IsArchived {
			continue
		}

		found, err := s.fetchChannel(ctx, token, channel.ID, channelLabel(channel.NameNormalized), platform, w)
		if err != nil {
			s.logger.Debug("channel skipped", "workspace", name, "channel", channel.ID, "error", err)
			continue
		}
		messages = append(messages, found...)
	}

	s.logger.Info("workspace fetched", "workspace", name, "messages", len(messages))
	return messages, nil
}

func (s *Source) fetchChannel(ctx context.Context, token, channelID, label, platform string, w source.Window) ([]domain.Message, error) {
	query := url.Values{}
	query.Set("channel", channelID)
	query.Set("oldest", strconv.FormatFloat(w.Cutoff(), 'f', 6, 64))
	query.Set("limit", strconv.Itoa(s.historyLimit))

	var history historyResponse
	if err := s.call(ctx, token, "conversations.history", query, &history); err != nil {
		return nil, err
	}
	if !history.OK {
		return nil, fmt.Errorf("conversations.history: %s", history.Error)
	}

	var messages []domain.Message
	for _, msg := range history.Messages {
		if msg.User == "" || msg.Text == "" {
			continue
		}
		ts, err := strconv.ParseFloat(msg.TS, 64)
		if err != nil {
			continue
		}
		messages = append(messages, domain.Message{
			Platform:  platform,
			Channel:   label,
			Sender:    msg.User,
			Text:      msg.Text,
			Timestamp: ts,
		})
	}
	return messages, nil
}

func (s *Source) call(ctx context.Context, token, method string, query url.Values, v any) error {
	endpoint := fmt.Sprintf("%s/%s?%s", s.baseURL, method, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", method, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}
	return nil
}

func channelLabel(normalized string) string {
	if normalized == "" {
		return "DM"
	}
	return normalized
}
