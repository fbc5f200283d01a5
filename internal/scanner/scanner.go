package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"DealsTracker/internal/domain"
)

// ErrUnknownProvider is returned by Resolve for names nobody registered.
var ErrUnknownProvider = errors.New("unknown search provider")

// Request carries all parameters required to execute one search.
type Request struct {
	SourceName string
	Query      string
	Options    map[string]string
}

// Searcher is a single news-search provider (NewsAPI, GNews, etc.). A searcher
// that is not Configured stays registered but is skipped by Ready.
type Searcher interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, req Request) ([]domain.Article, error)
}

// Registry maps provider names, matched case-insensitively, to searchers.
type Registry struct {
	searchers map[string]Searcher
}

func NewRegistry() *Registry {
	return &Registry{searchers: map[string]Searcher{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(searcher Searcher) {
	if r.searchers == nil {
		r.searchers = map[string]Searcher{}
	}
	r.searchers[key(searcher.Name())] = searcher
}

// Resolve returns the searcher registered under name, configured or not.
func (r *Registry) Resolve(name string) (Searcher, error) {
	if searcher, ok := r.searchers[key(name)]; ok {
		return searcher, nil
	}
	return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
}

// Ready reports whether name resolves to a configured searcher.
func (r *Registry) Ready(name string) bool {
	searcher, ok := r.searchers[key(name)]
	return ok && searcher.Configured()
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.searchers))
	for name := range r.searchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
