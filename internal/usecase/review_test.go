package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/infrastructure/storage"
)

func seedPending(t *testing.T, repo *storage.MemoryRepository, id, title string) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), domain.Deal{
		ID: id, Title: title, Country: "France", Value: "1",
		Status: domain.StatusSigned, Type: domain.CategoryTrade, Impact: domain.ImpactLow,
		ReviewStatus: domain.ReviewPending,
	}))
}

func TestReviewApproveMovesToPublic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	seedPending(t, repo, "1", "A")
	seedPending(t, repo, "2", "B")

	q := NewReviewQueue(repo)
	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, q.Approve(ctx, "1"))

	pending, err = q.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "2", pending[0].ID)

	public, err := NewDeals(repo).Public(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "1", public[0].ID)
}

func TestReviewRejectedNeverPublic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	seedPending(t, repo, "1", "A")

	q := NewReviewQueue(repo)
	require.NoError(t, q.Reject(ctx, "1"))

	public, err := NewDeals(repo).Public(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)

	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReviewIsIdempotentAndLastDecisionWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	seedPending(t, repo, "1", "A")
	q := NewReviewQueue(repo)

	st, err := q.Apply(ctx, "1", ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewApproved, st)

	st, err = q.Apply(ctx, "1", ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewApproved, st)

	st, err = q.Apply(ctx, "1", ActionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewRejected, st)

	d, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewRejected, d.ReviewStatus)
	assert.Equal(t, "A", d.Title, "only the review status changes")
}

func TestReviewUnknownID(t *testing.T) {
	t.Parallel()

	q := NewReviewQueue(storage.NewMemoryRepository())
	assert.ErrorIs(t, q.Approve(context.Background(), "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, q.Reject(context.Background(), " "), domain.ErrInvalid)
}

func TestParseReviewAction(t *testing.T) {
	t.Parallel()

	a, err := ParseReviewAction(" Approve ")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	a, err = ParseReviewAction("reject")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewRejected, a.Target())

	_, err = ParseReviewAction("pending")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}
