package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"DealsTracker/internal/config"
	"DealsTracker/internal/domain"
	"DealsTracker/internal/scanner"
)

// Client searches the NewsAPI "everything" endpoint.
type Client struct {
	client   *http.Client
	endpoint string
	apiKey   string
	language string
	sortBy   string
	pageSize int
	logger   *slog.Logger
}

var _ scanner.Searcher = (*Client)(nil)

// NewClient wires an HTTP client; pageSize defaults to 2.
func NewClient(cfg config.NewsConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 2
	}
	return &Client{
		client:   client,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		sortBy:   cfg.SortBy,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Name identifies the provider inside the registry.
func (c *Client) Name() string {
	return "newsapi"
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.endpoint != ""
}

type searchResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Search runs one phrase. Failures are logged and produce an empty result so
// that a single broken query never aborts the scan.
func (c *Client) Search(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if !c.Configured() {
		c.logger.Warn("news search skipped: api key not set", "query", req.Query)
		return nil, nil
	}

	searchURL, err := buildSearchURL(c.endpoint, req.Query, c.language, c.sortBy, c.pageSize)
	if err != nil {
		c.logger.Error("build search url", "query", req.Query, "error", err)
		return nil, nil
	}

	payload, err := c.fetch(ctx, searchURL)
	if err != nil {
		c.logger.Error("news search failed", "query", req.Query, "error", err)
		return nil, nil
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		u := strings.TrimSpace(item.URL)
		title := strings.TrimSpace(item.Title)
		if u == "" || title == "" {
			continue
		}
		source := item.Source.Name
		if source == "" {
			source = req.SourceName
		}
		articles = append(articles, domain.Article{
			URL:         u,
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			Content:     strings.TrimSpace(item.Content),
			Source:      source,
		})
	}

	c.logger.Debug("news search done", "query", req.Query, "returned", len(payload.Articles), "kept", len(articles))
	return articles, nil
}

func (c *Client) fetch(ctx context.Context, searchURL string) (searchResponse, error) {
	var out searchResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "DealsTracker/1.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return out, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return out, fmt.Errorf("newsapi returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode search response: %w", err)
	}

	return out, nil
}

func buildSearchURL(base, query, language, sortBy string, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid news endpoint %s: %w", base, err)
	}

	q := parsed.Query()
	q.Set("q", query)
	if language != "" {
		q.Set("language", language)
	}
	if sortBy != "" {
		q.Set("sortBy", sortBy)
	}
	q.Set("pageSize", strconv.Itoa(pageSize))
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
