package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DealsTracker/internal/config"
	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
	"DealsTracker/internal/scanner"
)

// QuerySource implements ArticleSource by running every configured search
// phrase through its registered provider.
type QuerySource struct {
	registry   *scanner.Registry
	sources    []config.SourceConfig
	queryDelay time.Duration
	sleep      func(context.Context, time.Duration) error
	logger     *slog.Logger
}

var _ ports.ArticleSource = (*QuerySource)(nil)

// NewQuerySource wires the provider registry with config-defined sources.
func NewQuerySource(reg *scanner.Registry, sources []config.SourceConfig, queryDelay time.Duration, log *slog.Logger) *QuerySource {
	return &QuerySource{
		registry:   reg,
		sources:    sources,
		queryDelay: queryDelay,
		sleep:      sleepContext,
		logger:     log,
	}
}

// Configured reports whether at least one source resolves to a usable provider.
func (s *QuerySource) Configured() bool {
	if s.registry == nil {
		return false
	}
	for _, src := range s.sources {
		if len(src.Queries) > 0 && s.registry.Ready(src.Provider) {
			return true
		}
	}
	return false
}

// Collect runs all phrases, drops articles without URL or title, and returns
// the flattened list deduplicated by URL in first-seen order.
func (s *QuerySource) Collect(ctx context.Context) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("provider registry is not configured")
	}

	s.debug("collect", "sources", len(s.sources))

	var aggregated []domain.Article
	seen := map[string]struct{}{}
	first := true
	for _, src := range s.sources {
		searcher, err := s.registry.Resolve(src.Provider)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		for _, query := range src.Queries {
			if !first && s.queryDelay > 0 {
				if err := s.sleep(ctx, s.queryDelay); err != nil {
					return nil, err
				}
			}
			first = false

			results, err := searcher.Search(ctx, scanner.Request{
				SourceName: src.Name,
				Query:      query,
				Options:    src.Options,
			})
			if err != nil {
				s.warn("query failed", "source", src.Name, "query", query, "error", err)
				continue
			}

			kept := 0
			for _, article := range results {
				if article.URL == "" || article.Title == "" {
					continue
				}
				if _, ok := seen[article.URL]; ok {
					continue
				}
				seen[article.URL] = struct{}{}
				if article.Source == "" {
					article.Source = src.Name
				}
				aggregated = append(aggregated, article)
				kept++
			}
			s.debug("query produced articles", "source", src.Name, "query", query, "returned", len(results), "new", kept)
		}
	}

	s.debug("query source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *QuerySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *QuerySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
