package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/infrastructure/storage"
)

type fakeSource struct {
	articles   []domain.Article
	err        error
	configured bool
}

func (s *fakeSource) Configured() bool { return s.configured }

func (s *fakeSource) Collect(context.Context) ([]domain.Article, error) {
	return s.articles, s.err
}

// fakeExtractor answers per source URL; unknown URLs yield a candidate titled
// after the URL.
type fakeExtractor struct {
	mu         sync.Mutex
	configured bool
	results    map[string]error
	candidates map[string]domain.Candidate
	calls      []string
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		configured: true,
		results:    map[string]error{},
		candidates: map[string]domain.Candidate{},
	}
}

func (e *fakeExtractor) Configured() bool { return e.configured }

func (e *fakeExtractor) Extract(_ context.Context, text, sourceURL string) (domain.Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, sourceURL)
	if err, ok := e.results[sourceURL]; ok {
		return domain.Candidate{}, err
	}
	if c, ok := e.candidates[sourceURL]; ok {
		return c, nil
	}
	return domain.Candidate{
		Title:   "Deal from " + sourceURL,
		Country: "France",
		Value:   "1.5",
		Status:  domain.StatusSigned,
		Type:    domain.CategoryTrade,
		Impact:  domain.ImpactMedium,
		Date:    "March 2025",
	}, nil
}

func (e *fakeExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

type fakeFetcher struct {
	pages map[string]string
	calls int
}

func (f *fakeFetcher) Text(_ context.Context, url string) string {
	f.calls++
	return f.pages[url]
}

type fakeNotifier struct {
	digests []string
	err     error
}

func (n *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

// failingInsertRepo wraps the memory store and fails inserts for chosen titles.
type failingInsertRepo struct {
	*storage.MemoryRepository
	failTitles map[string]error
}

func (r *failingInsertRepo) Insert(ctx context.Context, deal domain.Deal) error {
	if err, ok := r.failTitles[deal.Title]; ok {
		return err
	}
	return r.MemoryRepository.Insert(ctx, deal)
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func noSleep(context.Context, time.Duration) error { return nil }

func articles(urls ...string) []domain.Article {
	out := make([]domain.Article, 0, len(urls))
	for _, u := range urls {
		out = append(out, domain.Article{URL: u, Title: "Headline " + u, Description: "text for " + u})
	}
	return out
}
