package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

const fallbackYear = 2000

// SeedResult reports what a seeding run did.
type SeedResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Maintenance hosts one-off data jobs run by operators.
type Maintenance struct {
	repo   ports.DealRepository
	gate   *DedupGate
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewMaintenance(repo ports.DealRepository, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{
		repo:   repo,
		gate:   NewDedupGate(repo),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Seed inserts curated deals as approved, skipping titles already stored.
func (m *Maintenance) Seed(ctx context.Context, deals []domain.Deal) (SeedResult, error) {
	res := SeedResult{Total: len(deals)}
	for _, deal := range deals {
		known, err := m.gate.KnownTitle(ctx, deal.Title)
		if err != nil {
			return res, fmt.Errorf("seed lookup %q: %w", deal.Title, err)
		}
		if known {
			res.Skipped++
			continue
		}

		deal.ID = m.newID()
		deal.ReviewStatus = domain.ReviewApproved
		if deal.CreatedAt.IsZero() {
			deal.CreatedAt = m.now()
		}
		if err := deal.Validate(); err != nil {
			m.logger.Warn("seed entry rejected", "title", deal.Title, "error", err)
			res.Skipped++
			continue
		}

		err = m.repo.Insert(ctx, deal)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("seed insert %q: %w", deal.Title, err)
		default:
			res.Added++
		}
	}

	m.logger.Info("seed finished", "added", res.Added, "skipped", res.Skipped, "total", res.Total)
	return res, nil
}

// FixDates resets every record's creation time to January 1st of the year in
// its display date, so that creation order follows the deal chronology.
func (m *Maintenance) FixDates(ctx context.Context) (int, error) {
	deals, err := m.repo.List(ctx, domain.ListFilter{})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, d := range deals {
		if err := m.repo.SetCreatedAt(ctx, d.ID, CreatedAtFor(d.Date)); err != nil {
			return updated, fmt.Errorf("fix date of %s: %w", d.ID, err)
		}
		updated++
	}
	m.logger.Info("creation dates rewritten", "updated", updated)
	return updated, nil
}

// CreatedAtFor maps a display date to midnight UTC on January 1st of its year.
func CreatedAtFor(date string) time.Time {
	year := domain.ExtractYear(date)
	if year == 0 {
		year = fallbackYear
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
