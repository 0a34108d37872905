package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ChiefOfStaff/internal/config"
	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/retry"
)

func newTestClient(endpoint string) *Client {
	return NewClient(config.GenAIConfig{
		Endpoint:     endpoint,
		Model:        "gemini-2.0-flash",
		APIKey:       "test-key",
		SystemPrompt: "Act as my chief of staff.",
	}, []domain.RubricCriterion{
		{Name: "novel materials", Weight: 0.2},
		{Name: "novel structures", Weight: 0.3},
		{Name: "new phenomena", Weight: 0.5},
	})
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"parts": []any{map[string]any{"text": text}},
			},
		}},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestSummarizeSendsCorpusAndInstructions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header: %q", got)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "brief me like this" {
			t.Error("expected the caller's instructions as the system instruction")
		}
		if len(req.Contents) != 1 || !strings.Contains(req.Contents[0].Parts[0].Text, "the corpus") {
			t.Error("expected the corpus in the request body")
		}

		fmt.Fprint(w, candidateResponse("## Daily Briefing\nNothing urgent."))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	out, err := client.Summarize(context.Background(), "brief me like this", []byte(`["the corpus"]`))
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if out != "## Daily Briefing\nNothing urgent." {
		t.Fatalf("unexpected narrative: %q", out)
	}
}

func TestSummarizeFallsBackToConfiguredPrompt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "Act as my chief of staff." {
			t.Error("expected the configured system prompt when no instructions are given")
		}
		fmt.Fprint(w, candidateResponse("ok"))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Summarize(context.Background(), "", []byte("[]")); err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
}

func TestSummarizeQuotaErrorCarriesStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"status": "RESOURCE_EXHAUSTED"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Summarize(context.Background(), "", []byte("[]"))
	if err == nil {
		t.Fatal("expected an error from a 429 response")
	}
	if !retry.IsRateLimit(err) {
		t.Fatalf("expected the error to classify as a rate limit: %v", err)
	}
}

func TestEvaluateParsesRubricVerdict(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Error("expected a JSON response mime type on evaluations")
		}
		if req.SystemInstruction == nil || !strings.Contains(req.SystemInstruction.Parts[0].Text, "novel materials (weight 0.20)") {
			t.Error("expected the weighted rubric in the system instruction")
		}

		fmt.Fprint(w, candidateResponse(`{
			"relevance_score": 83,
			"justification": "reports a new phenomenon",
			"assessment": {"new phenomena": "strong"}
		}`))
	}))
	defer server.Close()

	scored, err := newTestClient(server.URL).Evaluate(context.Background(), domain.Document{Title: "paper", Abstract: "text"})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if scored.Score != 83 || scored.Justification != "reports a new phenomenon" {
		t.Fatalf("unexpected verdict: %+v", scored)
	}
	if scored.Assessment["new phenomena"] != "strong" {
		t.Fatalf("unexpected assessment: %+v", scored.Assessment)
	}
	if scored.Document.Title != "paper" {
		t.Fatal("expected the document carried through the verdict")
	}
}

func TestEvaluateRejectsMalformedVerdicts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"not json", candidateResponse("I think it scores about 80.")},
		{"missing score", candidateResponse(`{"justification": "no score given"}`)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			if _, err := newTestClient(server.URL).Evaluate(context.Background(), domain.Document{}); err == nil {
				t.Fatal("expected malformed model output to error")
			}
		})
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Summarize(context.Background(), "", []byte("[]")); err == nil {
		t.Fatal("expected an error for an empty candidate list")
	}
}

func TestGenerateMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(config.GenAIConfig{Endpoint: "https://example.org"}, nil)
	if _, err := client.Summarize(context.Background(), "", []byte("[]")); err == nil {
		t.Fatal("expected an error without an api key and model")
	}
}
