package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/infrastructure/storage"
	"DealsTracker/internal/ports"
)

func newTestIngestor(source ports.ArticleSource, extractor ports.Extractor, repo ports.DealRepository, notifier ports.Notifier) *Ingestor {
	return NewIngestor(IngestorDeps{
		Source:       source,
		Extractor:    extractor,
		Repository:   repo,
		Notifier:     notifier,
		ExtractDelay: time.Second,
		Clock:        fixedClock(),
		Sleep:        noSleep,
		NewID:        sequentialIDs(),
	})
}

func TestIngestorAddsPendingDeals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	src := &fakeSource{configured: true, articles: articles("https://a.example/1", "https://b.example/2")}
	ext := newFakeExtractor()
	notifier := &fakeNotifier{}

	res, err := newTestIngestor(src, ext, repo, notifier).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Candidates)
	assert.Equal(t, 2, res.Added)
	assert.Zero(t, res.Skipped)
	assert.False(t, res.QuotaExhausted)
	assert.Empty(t, res.Errors)

	pending, err := repo.List(ctx, domain.ListFilter{ReviewStatus: domain.ReviewPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, d := range pending {
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.SourceURL)
		assert.Equal(t, "Headline "+d.SourceURL, d.SourceTitle)
		require.NotNil(t, d.FetchedAt)
	}

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "2 new deal(s)")
}

func TestIngestorSkipsKnownURLsWithoutExtraction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	require.NoError(t, repo.Insert(ctx, domain.Deal{
		ID: "existing", Title: "Existing", Country: "USA", ReviewStatus: domain.ReviewApproved,
		SourceURL: "https://a.example/1",
	}))

	src := &fakeSource{configured: true, articles: articles("https://a.example/1", "https://b.example/2")}
	ext := newFakeExtractor()

	res, err := newTestIngestor(src, ext, repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"https://b.example/2"}, ext.calls)
}

func TestIngestorRerunIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	src := &fakeSource{configured: true, articles: articles("https://a.example/1", "https://b.example/2")}

	first, err := newTestIngestor(src, newFakeExtractor(), repo, nil).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, first.Added)

	ext := newFakeExtractor()
	second, err := newTestIngestor(src, ext, repo, nil).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Added)
	assert.Equal(t, 2, second.Skipped)
	assert.Zero(t, ext.callCount())
}

func TestIngestorQuotaHaltsBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	src := &fakeSource{configured: true, articles: articles(
		"https://a.example/1", "https://a.example/2", "https://a.example/3", "https://a.example/4", "https://a.example/5",
	)}
	ext := newFakeExtractor()
	ext.results["https://a.example/3"] = domain.ErrQuotaExhausted

	res, err := newTestIngestor(src, ext, repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.True(t, res.QuotaExhausted)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, res.Candidates, res.Added+res.Skipped)
	assert.Equal(t, 3, ext.callCount(), "no extraction after the quota signal")
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "quota")
}

func TestIngestorSkipsNonDealsAndBadOutput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	src := &fakeSource{configured: true, articles: articles("https://a.example/1", "https://a.example/2", "https://a.example/3")}
	ext := newFakeExtractor()
	ext.results["https://a.example/1"] = domain.ErrNotADeal
	ext.results["https://a.example/2"] = &domain.ParseError{Raw: "garbage", Err: errors.New("no JSON")}

	res, err := newTestIngestor(src, ext, repo, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 2, res.Skipped)
	assert.False(t, res.QuotaExhausted)
	assert.Equal(t, 3, ext.callCount())
}

func TestIngestorDuplicateTitleIsSkipped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	src := &fakeSource{configured: true, articles: articles("https://a.example/1", "https://b.example/2")}
	ext := newFakeExtractor()
	same := domain.Candidate{Title: "Same Deal", Country: "Japan"}
	ext.candidates["https://a.example/1"] = same
	ext.candidates["https://b.example/2"] = same

	res, err := newTestIngestor(src, ext, repo, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Errors)
}

func TestIngestorRecordsStoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &failingInsertRepo{
		MemoryRepository: storage.NewMemoryRepository(),
		failTitles:       map[string]error{"Deal from https://a.example/1": errors.New("connection reset")},
	}
	src := &fakeSource{configured: true, articles: articles("https://a.example/1", "https://a.example/2")}

	res, err := newTestIngestor(src, newFakeExtractor(), repo, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "connection reset")
}

func TestIngestorRequiresConfiguration(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()

	_, err := newTestIngestor(&fakeSource{configured: false}, newFakeExtractor(), repo, nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	ext := newFakeExtractor()
	ext.configured = false
	_, err = newTestIngestor(&fakeSource{configured: true}, ext, repo, nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestIngestorSourceFailure(t *testing.T) {
	t.Parallel()

	src := &fakeSource{configured: true, err: errors.New("registry broken")}
	_, err := newTestIngestor(src, newFakeExtractor(), storage.NewMemoryRepository(), nil).Run(context.Background())
	assert.ErrorContains(t, err, "registry broken")
}

func TestIngestorCancellationStopsBatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{configured: true, articles: articles("https://a.example/1", "https://a.example/2")}
	ext := newFakeExtractor()
	in := NewIngestor(IngestorDeps{
		Source:       src,
		Extractor:    ext,
		Repository:   storage.NewMemoryRepository(),
		ExtractDelay: time.Hour,
	})

	res, err := in.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, ext.callCount())
}

func TestIngestorNotifierFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	src := &fakeSource{configured: true, articles: articles("https://a.example/1")}
	notifier := &fakeNotifier{err: errors.New("telegram down")}

	res, err := newTestIngestor(src, newFakeExtractor(), storage.NewMemoryRepository(), notifier).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Len(t, notifier.digests, 1)
}

func TestBuildDigestMessageIsPlainText(t *testing.T) {
	t.Parallel()

	msg := buildDigestMessage(domain.ScanResult{Added: 1, AddedTitles: []string{"HAL_Tejas *Mk2* `engine`"}, QuotaExhausted: true})
	assert.True(t, strings.HasPrefix(msg, "1 new deal(s) awaiting review\n"), msg)
	assert.Contains(t, msg, "- HAL_Tejas *Mk2* `engine`\n")
	assert.Contains(t, msg, "quota exhausted")
}
