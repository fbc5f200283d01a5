package usecase

import (
	"context"
	"fmt"
	"strings"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

// ReviewAction is an operator decision on a queued deal.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// ParseReviewAction accepts "approve" or "reject", case-insensitively.
func ParseReviewAction(value string) (ReviewAction, error) {
	switch ReviewAction(strings.ToLower(strings.TrimSpace(value))) {
	case ActionApprove:
		return ActionApprove, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", &domain.ValidationError{Field: "action", Reason: fmt.Sprintf("unsupported value %q", value)}
	}
}

// Target returns the review status the action moves a deal to.
func (a ReviewAction) Target() domain.ReviewStatus {
	if a == ActionApprove {
		return domain.ReviewApproved
	}
	return domain.ReviewRejected
}

// ReviewQueue moves pending deals to approved or rejected. Re-applying a
// decision is idempotent and the last decision wins; nothing moves a deal
// back to pending.
type ReviewQueue struct {
	repo ports.DealRepository
}

func NewReviewQueue(repo ports.DealRepository) *ReviewQueue {
	return &ReviewQueue{repo: repo}
}

// Pending lists the deals waiting for a decision, newest first.
func (q *ReviewQueue) Pending(ctx context.Context) ([]domain.Deal, error) {
	return q.repo.List(ctx, domain.ListFilter{ReviewStatus: domain.ReviewPending})
}

func (q *ReviewQueue) Approve(ctx context.Context, id string) error {
	_, err := q.Apply(ctx, id, ActionApprove)
	return err
}

func (q *ReviewQueue) Reject(ctx context.Context, id string) error {
	_, err := q.Apply(ctx, id, ActionReject)
	return err
}

// Apply records the decision and returns the resulting review status.
func (q *ReviewQueue) Apply(ctx context.Context, id string, action ReviewAction) (domain.ReviewStatus, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &domain.ValidationError{Field: "id", Reason: "required"}
	}
	target := action.Target()
	if err := q.repo.SetReviewStatus(ctx, id, target); err != nil {
		return "", fmt.Errorf("%s deal %s: %w", action, id, err)
	}
	return target, nil
}
