package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

// MemoryRepository keeps deals in process memory. It enforces the same
// uniqueness rules as the Postgres schema and backs development runs without
// a database.
type MemoryRepository struct {
	mu    sync.RWMutex
	deals map[string]domain.Deal
}

var _ ports.DealRepository = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{deals: map[string]domain.Deal{}}
}

func (r *MemoryRepository) Insert(_ context.Context, deal domain.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.deals[deal.ID]; ok {
		return fmt.Errorf("insert id %s: %w", deal.ID, domain.ErrDuplicate)
	}
	if r.conflictLocked(deal, "") {
		return fmt.Errorf("insert %q: %w", deal.Title, domain.ErrDuplicate)
	}
	r.deals[deal.ID] = clone(deal)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deals[id]
	if !ok {
		return domain.Deal{}, domain.ErrNotFound
	}
	return clone(d), nil
}

func (r *MemoryRepository) List(_ context.Context, filter domain.ListFilter) ([]domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Deal, 0, len(r.deals))
	for _, d := range r.deals {
		if filter.ReviewStatus != "" && d.ReviewStatus != filter.ReviewStatus {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, deal domain.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.deals[deal.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.conflictLocked(domain.Deal{Title: deal.Title}, deal.ID) {
		return fmt.Errorf("update %q: %w", deal.Title, domain.ErrDuplicate)
	}

	cur.Title = deal.Title
	cur.Country = deal.Country
	cur.Value = deal.Value
	cur.Status = deal.Status
	cur.Type = deal.Type
	cur.Impact = deal.Impact
	cur.Description = deal.Description
	cur.StrategicIntent = deal.StrategicIntent
	cur.WhyIndiaNeedsThis = deal.WhyIndiaNeedsThis
	cur.KeyItems = append([]string(nil), deal.KeyItems...)
	cur.Date = deal.Date
	r.deals[deal.ID] = cur
	return nil
}

func (r *MemoryRepository) SetReviewStatus(_ context.Context, id string, status domain.ReviewStatus) error {
	return r.mutate(id, func(d *domain.Deal) { d.ReviewStatus = status })
}

func (r *MemoryRepository) SetCreatedAt(_ context.Context, id string, createdAt time.Time) error {
	return r.mutate(id, func(d *domain.Deal) { d.CreatedAt = createdAt })
}

func (r *MemoryRepository) mutate(id string, fn func(*domain.Deal)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deals[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&d)
	r.deals[id] = d
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.deals[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.deals, id)
	return nil
}

func (r *MemoryRepository) ExistsBySourceURL(_ context.Context, url string) (bool, error) {
	if url == "" {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.deals {
		if d.SourceURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) ExistsByTitle(_ context.Context, title string) (bool, error) {
	if title == "" {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.deals {
		if d.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) CountByReviewStatus(_ context.Context, status domain.ReviewStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, d := range r.deals {
		if d.ReviewStatus == status {
			n++
		}
	}
	return n, nil
}

// conflictLocked reports a title or non-empty source URL clash with any deal
// other than skipID.
func (r *MemoryRepository) conflictLocked(deal domain.Deal, skipID string) bool {
	for id, d := range r.deals {
		if id == skipID {
			continue
		}
		if d.Title == deal.Title {
			return true
		}
		if deal.SourceURL != "" && d.SourceURL == deal.SourceURL {
			return true
		}
	}
	return false
}

func clone(d domain.Deal) domain.Deal {
	d.KeyItems = append([]string{}, d.KeyItems...)
	if d.FetchedAt != nil {
		t := *d.FetchedAt
		d.FetchedAt = &t
	}
	return d
}
