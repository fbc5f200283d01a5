package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

const defaultExtractMaxChars = 3000

const extractionPrompt = `You are an expert analyst of Indian foreign policy, defence, and trade deals.

Read this news article and extract information about an India deal/agreement. Return ONLY valid JSON, no markdown, no explanation, no code fences.

Article:
"""
%s
"""

Return this exact JSON structure:
{
  "title": "Short official-style title of the deal (max 80 chars)",
  "country": "Partner country name e.g. France, USA, European Union. Use India if internal.",
  "value": "Deal value in billions USD as plain number string e.g. 5.4 or 0 if unknown",
  "status": "One of: Proposed | Signed | In Progress | Ongoing | Completed",
  "type": "One of: Defense Acquisition | Trade | Technology | Energy | Diplomatic",
  "impact": "One of: High Impact | Medium Impact | Low Impact",
  "description": "2-3 sentence factual summary",
  "strategicIntent": "1-2 sentences on India strategic goal",
  "whyIndiaNeedsThis": "1-2 sentences on specific Indian need",
  "keyItems": ["item 1", "item 2", "item 3"],
  "date": "Month and year e.g. February 2026"
}

If this is NOT about an India deal or agreement, return: {"error": "not_a_deal"}`

// Extractor implements ports.Extractor on top of the completion client.
type Extractor struct {
	client   *Client
	maxChars int
}

var _ ports.Extractor = (*Extractor)(nil)

// NewExtractor builds an extractor truncating article text to maxChars.
func NewExtractor(client *Client, maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = defaultExtractMaxChars
	}
	return &Extractor{client: client, maxChars: maxChars}
}

// Configured reports whether the underlying client can make calls.
func (e *Extractor) Configured() bool {
	return e != nil && e.client.Configured()
}

// Extract asks the model for a structured deal. It returns domain.ErrNotADeal,
// domain.ErrQuotaExhausted, a *domain.ParseError or a transport error; only
// the quota error should stop a batch.
func (e *Extractor) Extract(ctx context.Context, text, sourceURL string) (domain.Candidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Candidate{}, domain.ErrNoArticleText
	}

	body := truncateRunes(text, e.maxChars)
	if sourceURL != "" {
		body = fmt.Sprintf("Source: %s\n\n%s", sourceURL, body)
	}

	reply, err := e.client.Complete(ctx, Completion{
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: fmt.Sprintf(extractionPrompt, body)}},
		Temperature: 0.1,
		MaxTokens:   1024,
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) || errors.Is(err, domain.ErrNotConfigured) {
			return domain.Candidate{}, err
		}
		return domain.Candidate{}, fmt.Errorf("extract deal: %w", err)
	}

	return domain.ParseCandidate(reply)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
