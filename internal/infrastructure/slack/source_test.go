package slack

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ChiefOfStaff/internal/source"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSource(baseURL string, workspaces map[string]string) *Source {
	src := NewSource(workspaces, discard())
	src.baseURL = baseURL
	return src
}

func TestFetchCollectsChannelHistory(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer xoxb-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		switch {
		case strings.Contains(r.URL.Path, "conversations.list"):
			fmt.Fprint(w, `{"ok": true, "channels": [
				{"id": "C1", "name_normalized": "general", "is_archived": false},
				{"id": "C2", "name_normalized": "graveyard", "is_archived": true},
				{"id": "D1", "name_normalized": "", "is_archived": false}
			]}`)
		case strings.Contains(r.URL.Path, "conversations.history"):
			if r.URL.Query().Get("oldest") == "" {
				t.Error("expected an oldest cutoff on history calls")
			}
			switch r.URL.Query().Get("channel") {
			case "C1":
				fmt.Fprint(w, `{"ok": true, "messages": [
					{"user": "U1", "text": "ship it", "ts": "1731072000.000100"},
					{"user": "", "text": "joined the channel", "ts": "1731072001.000000"},
					{"user": "U2", "text": "", "ts": "1731072002.000000"}
				]}`)
			case "D1":
				fmt.Fprint(w, `{"ok": true, "messages": [
					{"user": "U3", "text": "lunch?", "ts": "1731072100.000200"}
				]}`)
			default:
				t.Errorf("unexpected channel %q", r.URL.Query().Get("channel"))
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	src := newTestSource(server.URL, map[string]string{"acme": "xoxb-test"})
	msgs, err := src.Fetch(context.Background(), source.LastHours(24))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Platform != "Slack (acme)" || msgs[0].Channel != "general" || msgs[0].Sender != "U1" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[0].Timestamp != 1731072000.0001 {
		t.Fatalf("expected the ts string parsed as a float, got %v", msgs[0].Timestamp)
	}
	if msgs[1].Channel != "DM" {
		t.Fatalf("expected a nameless conversation labelled DM, got %q", msgs[1].Channel)
	}
}

func TestFetchSkipsFailingWorkspace(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "Bearer bad-token" {
			fmt.Fprint(w, `{"ok": false, "error": "invalid_auth"}`)
			return
		}
		if strings.Contains(r.URL.Path, "conversations.list") {
			fmt.Fprint(w, `{"ok": true, "channels": [{"id": "C1", "name_normalized": "general"}]}`)
			return
		}
		fmt.Fprint(w, `{"ok": true, "messages": [{"user": "U1", "text": "still here", "ts": "1731072000.000000"}]}`)
	}))
	defer server.Close()

	src := newTestSource(server.URL, map[string]string{
		"broken":  "bad-token",
		"healthy": "xoxb-good",
	})
	msgs, err := src.Fetch(context.Background(), source.LastHours(24))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "still here" {
		t.Fatalf("expected only the healthy workspace's message, got %+v", msgs)
	}
}

func TestFetchNoWorkspaces(t *testing.T) {
	t.Parallel()

	src := NewSource(nil, discard())
	if _, err := src.Fetch(context.Background(), source.LastHours(24)); err == nil {
		t.Fatal("expected an error with no workspaces configured")
	}
}
