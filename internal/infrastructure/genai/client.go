package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ChiefOfStaff/internal/config"
	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/ports"
)

// Client talks to the Gemini generateContent API. One client serves both
// capabilities the pipeline needs: rubric evaluation of documents and corpus
// summarization.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	rubric       []domain.RubricCriterion
	httpClient   *http.Client
}

var _ ports.Evaluator = (*Client)(nil)
var _ ports.Summarizer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.GenAIConfig, rubric []domain.RubricCriterion) *Client {
	return &Client{
		endpoint:     strings.TrimSuffix(cfg.Endpoint, "/"),
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		rubric:       rubric,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generateRequest struct {
	SystemInstruction *content        `json:"system_instruction,omitempty"`
	Contents          []content       `json:"contents"`
	GenerationConfig  *generationConf `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConf struct {
	ResponseMIMEType string `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Summarize sends the instructions and the corpus blob and returns the
// narrative text.
func (c *Client) Summarize(ctx context.Context, instructions string, corpus []byte) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: string(corpus)},
			{Text: "Here is the raw data dump. Generate my executive briefing."},
		}}},
	}
	if instructions != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: instructions}}}
	} else if c.systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: c.systemPrompt}}}
	}

	return c.generate(ctx, req)
}

// evaluation is the JSON shape the model is asked to return for a document.
type evaluation struct {
	RelevanceScore *int              `json:"relevance_score"`
	Justification  string            `json:"justification"`
	Assessment     map[string]string `json:"assessment"`
}

// Evaluate scores one document against the weighted rubric. Malformed model
// output surfaces as an error; the caller excludes the document.
func (c *Client) Evaluate(ctx context.Context, doc domain.Document) (domain.Scored, error) {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: c.rubricPrompt()}}},
		Contents: []content{{Parts: []part{
			{Text: fmt.Sprintf("Title: %s\nAuthor: %s\n\n%s", doc.Title, doc.Author, doc.Abstract)},
		}}},
		GenerationConfig: &generationConf{ResponseMIMEType: "application/json"},
	}

	raw, err := c.generate(ctx, req)
	if err != nil {
		return domain.Scored{}, err
	}

	var eval evaluation
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		return domain.Scored{}, fmt.Errorf("malformed evaluation: %w", err)
	}
	if eval.RelevanceScore == nil {
		return domain.Scored{}, fmt.Errorf("evaluation carries no relevance_score")
	}

	return domain.Scored{
		Document:      doc,
		Score:         *eval.RelevanceScore,
		Justification: eval.Justification,
		Assessment:    eval.Assessment,
	}, nil
}

func (c *Client) rubricPrompt() string {
	var b strings.Builder
	b.WriteString("You evaluate one research document for relevance to the user's interests.\n")
	b.WriteString("Score it 0-100 using this weighted rubric (weights sum to 1.0):\n")
	for _, criterion := range c.rubric {
		fmt.Fprintf(&b, "- %s (weight %.2f)\n", criterion.Name, criterion.Weight)
	}
	b.WriteString("Respond with JSON only: ")
	b.WriteString(`{"relevance_score": <int 0-100>, "justification": "<one sentence>", "assessment": {"<criterion>": "<finding>"}}`)
	return b.String()
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	if c.apiKey == "" || c.model == "" {
		return "", fmt.Errorf("genai client misconfigured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal genai payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		// The status line is part of the error text on purpose: the retry
		// policy classifies quota failures by that text.
		return "", fmt.Errorf("genai error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("genai returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
