package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/ports"
)

// Client talks to a CoinGecko-compatible token catalog. It backs the entity
// resolver and the lookup/list commands.
type Client struct {
	baseURL  string
	category string
	http     *http.Client
}

var _ ports.CatalogSearcher = (*Client)(nil)

// NewClient wires the catalog endpoint and the default listing category.
func NewClient(baseURL, category string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		category: category,
		http:     &http.Client{Timeout: 20 * time.Second},
	}
}

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		MarketCapRank *int   `json:"market_cap_rank"`
	} `json:"coins"`
}

// Search returns the raw candidate set in the provider's response order; the
// resolver applies its own ranking.
func (c *Client) Search(ctx context.Context, query string) ([]domain.CatalogEntry, error) {
	params := url.Values{}
	params.Set("query", query)

	var parsed searchResponse
	if err := c.get(ctx, "/search?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}

	entries := make([]domain.CatalogEntry, 0, len(parsed.Coins))
	for _, coin := range parsed.Coins {
		entries = append(entries, domain.CatalogEntry{
			ID:   coin.ID,
			Name: coin.Name,
			Rank: coin.MarketCapRank,
		})
	}
	return entries, nil
}

// Profile is the detail report for one resolved entity.
type Profile struct {
	Name        string
	Symbol      string
	PriceUSD    float64
	MarketCap   float64
	DevScore    float64
	Description string
}

type profileResponse struct {
	Name           string            `json:"name"`
	Symbol         string            `json:"symbol"`
	DeveloperScore float64           `json:"developer_score"`
	Description    map[string]string `json:"description"`
	MarketData     struct {
		CurrentPrice map[string]float64 `json:"current_price"`
		MarketCap    map[string]float64 `json:"market_cap"`
	} `json:"market_data"`
}

// FetchProfile loads the detail report for a resolved ID.
func (c *Client) FetchProfile(ctx context.Context, id string) (Profile, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "true")
	params.Set("developer_data", "true")

	var parsed profileResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"?"+params.Encode(), &parsed); err != nil {
		return Profile{}, err
	}

	return Profile{
		Name:        parsed.Name,
		Symbol:      strings.ToUpper(parsed.Symbol),
		PriceUSD:    parsed.MarketData.CurrentPrice["usd"],
		MarketCap:   parsed.MarketData.MarketCap["usd"],
		DevScore:    parsed.DeveloperScore,
		Description: cleanDescription(parsed.Description["en"]),
	}, nil
}

// MarketEntry is one row of the top-by-market-cap listing.
type MarketEntry struct {
	Rank      *int    `json:"market_cap_rank"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	PriceUSD  float64 `json:"current_price"`
	MarketCap float64 `json:"market_cap"`
}

// TopMarkets lists the category's top entries by market cap.
func (c *Client) TopMarkets(ctx context.Context, limit int) ([]MarketEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("category", c.category)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprintf("%d", limit))
	params.Set("page", "1")
	params.Set("sparkline", "false")

	var entries []MarketEntry
	if err := c.get(ctx, "/coins/markets?"+params.Encode(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func cleanDescription(raw string) string {
	cleaned := strings.ReplaceAll(raw, "\r\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "<a href=\"", "")
	cleaned = strings.ReplaceAll(cleaned, "\">", " ")
	if len(cleaned) > 300 {
		cleaned = cleaned[:300]
	}
	return cleaned
}
