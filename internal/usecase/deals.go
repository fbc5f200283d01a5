package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

const topPartners = 5

// Deals serves the read and edit operations behind the public pages and the
// admin console.
type Deals struct {
	repo ports.DealRepository
	now  func() time.Time
}

func NewDeals(repo ports.DealRepository) *Deals {
	return &Deals{repo: repo, now: time.Now}
}

func (s *Deals) List(ctx context.Context, filter domain.ListFilter) ([]domain.Deal, error) {
	return s.repo.List(ctx, filter)
}

func (s *Deals) Get(ctx context.Context, id string) (domain.Deal, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// Update applies the patch to the descriptive fields. Review status and
// provenance are not touched.
func (s *Deals) Update(ctx context.Context, id string, patch domain.DealPatch) (domain.Deal, error) {
	current, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Deal{}, err
	}
	updated, err := patch.Apply(current)
	if err != nil {
		return domain.Deal{}, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return domain.Deal{}, fmt.Errorf("update deal %s: %w", updated.ID, err)
	}
	return updated, nil
}

func (s *Deals) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

// Public lists approved deals in display order.
func (s *Deals) Public(ctx context.Context) ([]domain.Deal, error) {
	deals, err := s.repo.List(ctx, domain.ListFilter{ReviewStatus: domain.ReviewApproved})
	if err != nil {
		return nil, err
	}
	domain.SortForDisplay(deals)
	return deals, nil
}

// Dashboard aggregates the approved deals.
func (s *Deals) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	deals, err := s.repo.List(ctx, domain.ListFilter{ReviewStatus: domain.ReviewApproved})
	if err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Summarize(deals, topPartners), nil
}

// AdminStats counts approved deals per status plus the review backlog.
func (s *Deals) AdminStats(ctx context.Context) (domain.AdminStats, error) {
	approved, err := s.repo.List(ctx, domain.ListFilter{ReviewStatus: domain.ReviewApproved})
	if err != nil {
		return domain.AdminStats{}, err
	}
	pending, err := s.repo.CountByReviewStatus(ctx, domain.ReviewPending)
	if err != nil {
		return domain.AdminStats{}, err
	}

	byStatus := make(map[string]int, len(domain.DealStatuses))
	for _, st := range domain.DealStatuses {
		byStatus[string(st)] = 0
	}
	for _, d := range approved {
		byStatus[string(d.Status)]++
	}
	return domain.AdminStats{Total: len(approved), Pending: pending, ByStatus: byStatus}, nil
}

// Health reports the approved count; a store failure is returned as is.
func (s *Deals) Health(ctx context.Context) (domain.Health, error) {
	n, err := s.repo.CountByReviewStatus(ctx, domain.ReviewApproved)
	if err != nil {
		return domain.Health{Status: "error", Timestamp: s.now()}, err
	}
	return domain.Health{Status: "ok", Timestamp: s.now(), ApprovedDeals: n}, nil
}
