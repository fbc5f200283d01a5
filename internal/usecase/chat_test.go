package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/infrastructure/storage"
)

type recordingAssistant struct {
	deals   []domain.Deal
	history []domain.ChatMessage
}

func (a *recordingAssistant) Reply(_ context.Context, deals []domain.Deal, history []domain.ChatMessage) (string, error) {
	a.deals, a.history = deals, history
	return "answer", nil
}

func TestChatUsesApprovedDealsOnly(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	insertDeal(t, repo, domain.Deal{ID: "1", Title: "Public", Country: "France", ReviewStatus: domain.ReviewApproved})
	insertDeal(t, repo, domain.Deal{ID: "2", Title: "Hidden", Country: "France", ReviewStatus: domain.ReviewPending})

	assistant := &recordingAssistant{}
	history := []domain.ChatMessage{{Role: domain.RoleUser, Content: "What did France sign?"}}
	reply, err := NewChat(NewDeals(repo), assistant).Reply(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, "answer", reply)
	require.Len(t, assistant.deals, 1)
	assert.Equal(t, "Public", assistant.deals[0].Title)
	assert.Equal(t, history, assistant.history)
}

func TestChatWithoutAssistant(t *testing.T) {
	t.Parallel()

	_, err := NewChat(NewDeals(storage.NewMemoryRepository()), nil).Reply(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
