package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

const quotaMessage = "extraction quota exhausted, try again later"

// IngestorDeps wires all driven adapters into the scan orchestration.
type IngestorDeps struct {
	Source       ports.ArticleSource
	Extractor    ports.Extractor
	Repository   ports.DealRepository
	Notifier     ports.Notifier
	Logger       *slog.Logger
	ExtractDelay time.Duration
	Clock        func() time.Time
	Sleep        func(context.Context, time.Duration) error
	NewID        func() string
}

// Ingestor implements the scheduled news scan: collect articles, skip known
// URLs, extract each remaining one and queue it for review.
type Ingestor struct {
	source    ports.ArticleSource
	extractor ports.Extractor
	repo      ports.DealRepository
	gate      *DedupGate
	notifier  ports.Notifier
	logger    *slog.Logger
	delay     time.Duration
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
	newID     func() string
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestorDeps) *Ingestor {
	in := &Ingestor{
		source:    deps.Source,
		extractor: deps.Extractor,
		repo:      deps.Repository,
		gate:      NewDedupGate(deps.Repository),
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		delay:     deps.ExtractDelay,
		now:       deps.Clock,
		sleep:     deps.Sleep,
		newID:     deps.NewID,
	}
	if in.logger == nil {
		in.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if in.now == nil {
		in.now = time.Now
	}
	if in.sleep == nil {
		in.sleep = sleepContext
	}
	if in.newID == nil {
		in.newID = uuid.NewString
	}
	return in
}

// Run processes one batch strictly one article at a time. Per-article failures
// are recorded as skips; quota exhaustion stops further extraction calls and
// skips the rest of the batch. The returned error is reserved for
// configuration problems, source failures and cancellation.
func (p *Ingestor) Run(ctx context.Context) (domain.ScanResult, error) {
	result := domain.ScanResult{Errors: []string{}, Timestamp: p.now()}

	if p.source == nil || !p.source.Configured() {
		return result, domain.MissingConfig("news api key")
	}
	if p.extractor == nil || !p.extractor.Configured() {
		return result, domain.MissingConfig("llm api key")
	}
	if p.repo == nil {
		return result, domain.MissingConfig("deal repository")
	}

	articles, err := p.source.Collect(ctx)
	if err != nil {
		return result, fmt.Errorf("collect articles: %w", err)
	}
	result.Candidates = len(articles)
	p.logger.Info("scan started", "candidates", len(articles))

	for i, article := range articles {
		if result.QuotaExhausted {
			result.Skipped++
			continue
		}

		known, err := p.gate.KnownURL(ctx, article.URL)
		if err != nil {
			p.logger.Warn("dedup lookup failed", "url", article.URL, "error", err)
			result.Skipped++
			continue
		}
		if known {
			p.logger.Debug("already known", "url", article.URL)
			result.Skipped++
			continue
		}

		if p.delay > 0 {
			if err := p.sleep(ctx, p.delay); err != nil {
				result.Skipped += len(articles) - i
				result.Errors = append(result.Errors, "scan interrupted: "+err.Error())
				return result, err
			}
		}

		candidate, err := p.extractor.Extract(ctx, article.Text(), article.URL)
		switch {
		case errors.Is(err, domain.ErrQuotaExhausted):
			p.logger.Warn("extraction quota exhausted, halting batch", "processed", i, "remaining", len(articles)-i)
			result.QuotaExhausted = true
			result.Errors = append(result.Errors, quotaMessage)
			result.Skipped++
			continue
		case errors.Is(err, domain.ErrNotADeal):
			p.logger.Debug("not a deal", "url", article.URL)
			result.Skipped++
			continue
		case err != nil:
			p.logger.Warn("extraction failed", "url", article.URL, "error", err)
			result.Skipped++
			continue
		}

		now := p.now()
		deal := candidate.Pending(article.URL, article.Title, now)
		deal.ID = p.newID()
		if err := deal.Validate(); err != nil {
			p.logger.Warn("extracted deal rejected", "url", article.URL, "error", err)
			result.Skipped++
			continue
		}

		err = p.repo.Insert(ctx, deal)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			p.logger.Debug("duplicate deal", "title", deal.Title)
			result.Skipped++
		case err != nil:
			p.logger.Error("persist deal", "title", deal.Title, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", article.Title, err))
			result.Skipped++
		default:
			p.logger.Info("queued for review", "title", deal.Title, "url", article.URL)
			result.Added++
			result.AddedTitles = append(result.AddedTitles, deal.Title)
		}
	}

	p.logger.Info("scan finished",
		"added", result.Added,
		"skipped", result.Skipped,
		"quota_exhausted", result.QuotaExhausted,
		"errors", len(result.Errors))

	p.notify(ctx, result)
	return result, nil
}

func (p *Ingestor) notify(ctx context.Context, result domain.ScanResult) {
	if p.notifier == nil || result.Added == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(result)); err != nil {
		p.logger.Warn("publish review digest", "error", err)
	}
}

func buildDigestMessage(result domain.ScanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new deal(s) awaiting review\n", result.Added)
	for _, title := range result.AddedTitles {
		fmt.Fprintf(&b, "- %s\n", title)
	}
	if result.QuotaExhausted {
		b.WriteString("\nScan stopped early: extraction quota exhausted.\n")
	}
	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
