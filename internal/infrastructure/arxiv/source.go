package arxiv

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ChiefOfStaff/internal/config"
	"ChiefOfStaff/internal/domain"
	"ChiefOfStaff/internal/source"
)

const arxivBaseURL = "https://arxiv.org"

var dateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// Source crawls category listing pages and extracts preprints published
// inside the window. Listing pages are newest-first, so crawling stops at the
// first entry older than the cutoff.
type Source struct {
	categories []config.CategoryConfig
	client     *http.Client
	logger     *slog.Logger
	pageSize   int
}

var _ source.DocumentFetcher = (*Source)(nil)

// NewSource wires the configured category endpoints; pageSize defaults to 200.
func NewSource(categories []config.CategoryConfig, client *http.Client, logger *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{
		categories: categories,
		client:     client,
		logger:     logger,
		pageSize:   200,
	}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "arxiv"
}

// FetchRecent walks each category's listing pages. One failing category is
// skipped; the others still produce documents.
func (s *Source) FetchRecent(ctx context.Context, w source.Window) ([]domain.Document, error) {
	if len(s.categories) == 0 {
		return nil, fmt.Errorf("no arxiv categories configured")
	}

	results := make([]domain.Document, 0)
	seen := map[string]struct{}{}

	for _, cat := range s.categories {
		docs, err := s.scanCategory(ctx, cat, w)
		if err != nil {
			s.logger.Warn("category skipped", "category", cat.Name, "error", err)
			continue
		}
		for _, doc := range docs {
			if _, ok := seen[doc.Link]; ok {
				continue
			}
			seen[doc.Link] = struct{}{}
			results = append(results, doc)
		}
	}

	s.logger.Info("arxiv fetched", "documents", len(results))
	return results, nil
}

func (s *Source) scanCategory(ctx context.Context, cat config.CategoryConfig, w source.Window) ([]domain.Document, error) {
	var collected []domain.Document

	skip := 0
	for {
		pageURL, err := buildPageURL(cat.URL, skip, s.pageSize)
		if err != nil {
			return nil, err
		}

		doc, err := s.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		pageDocs, shouldContinue := s.extractDocuments(doc, w, cat.Name)
		collected = append(collected, pageDocs...)

		if !shouldContinue {
			break
		}
		skip += s.pageSize
	}

	return collected, nil
}

func (s *Source) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ChiefOfStaff/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (s *Source) extractDocuments(doc *goquery.Document, w source.Window, category string) ([]domain.Document, bool) {
	var (
		collected    []domain.Document
		continueScan = true
		processed    int
	)

	doc.Find("dl > dt").EachWithBreak(func(i int, dt *goquery.Selection) bool {
		dd := dt.Next()
		processed++

		entry, err := parseEntry(dt, dd, category)
		if err != nil {
			return true
		}

		if w.Contains(entry.Published) {
			collected = append(collected, entry)
			return true
		}
		// Older than the window; everything after this entry is older still.
		continueScan = false
		return false
	})

	if processed < s.pageSize {
		continueScan = false
	}

	return collected, continueScan
}

func parseEntry(dt, dd *goquery.Selection, category string) (domain.Document, error) {
	link := dt.Find("a[href*=\"/abs/\"]").First()
	href, _ := link.Attr("href")
	if href == "" {
		return domain.Document{}, fmt.Errorf("entry has no abstract link")
	}
	if !strings.HasPrefix(href, "http") {
		href = strings.TrimSuffix(arxivBaseURL, "/") + href
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	author := strings.TrimSpace(dd.Find(".list-authors").First().Text())
	author = strings.TrimSpace(strings.TrimPrefix(author, "Authors:"))

	abstract := dd.Find(".mathjax").First().Text()
	abstract = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(abstract), "Abstract:"))

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}

	published := time.Now().UTC()
	if match := dateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			published = parsed
		}
	}

	return domain.Document{
		Title:     title,
		Link:      href,
		Author:    author,
		Abstract:  abstract,
		Source:    category,
		Published: float64(published.Unix()),
	}, nil
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid category url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
