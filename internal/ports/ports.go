package ports

import (
	"context"
	"time"

	"DealsTracker/internal/domain"
)

// ArticleSource collects candidate articles from every configured search phrase,
// already flattened and deduplicated by URL.
type ArticleSource interface {
	Configured() bool
	Collect(ctx context.Context) ([]domain.Article, error)
}

// DealRepository persists deal records. Insert must return domain.ErrDuplicate
// when the title (or a non-empty source URL) is already taken.
type DealRepository interface {
	Insert(ctx context.Context, deal domain.Deal) error
	Get(ctx context.Context, id string) (domain.Deal, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Deal, error)
	Update(ctx context.Context, deal domain.Deal) error
	SetReviewStatus(ctx context.Context, id string, status domain.ReviewStatus) error
	SetCreatedAt(ctx context.Context, id string, createdAt time.Time) error
	Delete(ctx context.Context, id string) error
	ExistsBySourceURL(ctx context.Context, url string) (bool, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	CountByReviewStatus(ctx context.Context, status domain.ReviewStatus) (int, error)
}

// Extractor turns article text into a deal candidate.
type Extractor interface {
	Configured() bool
	Extract(ctx context.Context, text, sourceURL string) (domain.Candidate, error)
}

// TextFetcher downloads a page and returns its visible text, or "" on failure.
type TextFetcher interface {
	Text(ctx context.Context, url string) string
}

// Assistant answers questions about the tracked deals.
type Assistant interface {
	Reply(ctx context.Context, deals []domain.Deal, history []domain.ChatMessage) (string, error)
}

// Notifier streams review-queue digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
