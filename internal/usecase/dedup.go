package usecase

import (
	"context"
	"strings"

	"DealsTracker/internal/ports"
)

// DedupGate answers whether a candidate is already stored. It is the cheap
// first check; the store's unique indexes remain authoritative.
type DedupGate struct {
	repo ports.DealRepository
}

func NewDedupGate(repo ports.DealRepository) *DedupGate {
	return &DedupGate{repo: repo}
}

// KnownURL reports whether a deal was already created from url.
func (g *DedupGate) KnownURL(ctx context.Context, url string) (bool, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return false, nil
	}
	return g.repo.ExistsBySourceURL(ctx, url)
}

// KnownTitle reports whether title is already taken.
func (g *DedupGate) KnownTitle(ctx context.Context, title string) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, nil
	}
	return g.repo.ExistsByTitle(ctx, title)
}
