package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

// Intake turns operator-supplied material into stored deals. URL and text
// submissions go through the extractor and land in the review queue; form
// entries are trusted and stored as approved.
type Intake struct {
	repo      ports.DealRepository
	gate      *DedupGate
	extractor ports.Extractor
	fetcher   ports.TextFetcher
	now       func() time.Time
	newID     func() string
}

func NewIntake(repo ports.DealRepository, extractor ports.Extractor, fetcher ports.TextFetcher) *Intake {
	return &Intake{
		repo:      repo,
		gate:      NewDedupGate(repo),
		extractor: extractor,
		fetcher:   fetcher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// FromURL fetches the article at rawURL, extracts a deal and queues it.
// A URL that already produced a deal is rejected before any network call.
func (in *Intake) FromURL(ctx context.Context, rawURL string) (domain.Deal, error) {
	pageURL, err := normalizeURL(rawURL)
	if err != nil {
		return domain.Deal{}, err
	}

	known, err := in.gate.KnownURL(ctx, pageURL)
	if err != nil {
		return domain.Deal{}, fmt.Errorf("dedup lookup: %w", err)
	}
	if known {
		return domain.Deal{}, fmt.Errorf("source %s: %w", pageURL, domain.ErrDuplicate)
	}
	if err := in.ready(); err != nil {
		return domain.Deal{}, err
	}
	if in.fetcher == nil {
		return domain.Deal{}, domain.MissingConfig("page fetcher")
	}

	text := in.fetcher.Text(ctx, pageURL)
	if strings.TrimSpace(text) == "" {
		return domain.Deal{}, domain.ErrNoArticleText
	}
	return in.extractAndQueue(ctx, text, pageURL)
}

// FromText extracts a deal from pasted article text. pageURL is optional and
// recorded as provenance when present.
func (in *Intake) FromText(ctx context.Context, text, pageURL string) (domain.Deal, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Deal{}, domain.ErrNoArticleText
	}
	if strings.TrimSpace(pageURL) != "" {
		normalized, err := normalizeURL(pageURL)
		if err != nil {
			return domain.Deal{}, err
		}
		pageURL = normalized
	}
	if err := in.ready(); err != nil {
		return domain.Deal{}, err
	}
	return in.extractAndQueue(ctx, text, pageURL)
}

// Manual stores a form entry as approved, without provenance.
func (in *Intake) Manual(ctx context.Context, deal domain.Deal) (domain.Deal, error) {
	deal.ID = in.newID()
	deal.ReviewStatus = domain.ReviewApproved
	deal.SourceURL = ""
	deal.SourceTitle = ""
	deal.FetchedAt = nil
	deal.CreatedAt = in.now()
	if err := deal.Validate(); err != nil {
		return domain.Deal{}, err
	}
	if err := in.repo.Insert(ctx, deal); err != nil {
		return domain.Deal{}, err
	}
	return deal, nil
}

func (in *Intake) ready() error {
	if in.extractor == nil || !in.extractor.Configured() {
		return domain.MissingConfig("llm api key")
	}
	return nil
}

func (in *Intake) extractAndQueue(ctx context.Context, text, pageURL string) (domain.Deal, error) {
	candidate, err := in.extractor.Extract(ctx, text, pageURL)
	if err != nil {
		return domain.Deal{}, err
	}

	deal := candidate.Pending(pageURL, candidate.Title, in.now())
	if pageURL == "" {
		deal.SourceTitle = ""
	}
	deal.ID = in.newID()
	if err := deal.Validate(); err != nil {
		return domain.Deal{}, err
	}
	if err := in.repo.Insert(ctx, deal); err != nil {
		return domain.Deal{}, err
	}
	return deal, nil
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &domain.ValidationError{Field: "url", Reason: "required"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &domain.ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}
	return u.String(), nil
}
