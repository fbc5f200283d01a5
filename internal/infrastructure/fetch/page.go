package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"DealsTracker/internal/ports"
)

const (
	defaultMaxChars = 4000
	maxBodyBytes    = 2 << 20
	userAgent       = "Mozilla/5.0 (compatible; DealTrackerBot/1.0)"
)

// PageFetcher downloads article pages and reduces them to plain text.
type PageFetcher struct {
	client   *http.Client
	maxChars int
	logger   *slog.Logger
}

var _ ports.TextFetcher = (*PageFetcher)(nil)

// NewPageFetcher wires an HTTP client; maxChars defaults to 4000.
func NewPageFetcher(client *http.Client, maxChars int, logger *slog.Logger) *PageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PageFetcher{client: client, maxChars: maxChars, logger: logger}
}

// Text returns the visible text of the page, or "" on any failure.
func (f *PageFetcher) Text(ctx context.Context, pageURL string) string {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		f.logger.Warn("fetch article text", "url", pageURL, "error", err)
		return ""
	}
	return ExtractText(doc, f.maxChars)
}

func (f *PageFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// ExtractText drops script and style blocks, collapses whitespace and
// truncates the result to maxChars characters.
func ExtractText(doc *goquery.Document, maxChars int) string {
	doc.Find("script, style, noscript, template").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		collectText(n, &b)
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(text)
	if maxChars > 0 && len(runes) > maxChars {
		text = string(runes[:maxChars])
	}
	return strings.TrimSpace(text)
}

// collectText separates text nodes with spaces so adjacent block elements do
// not run together the way Selection.Text would join them.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
