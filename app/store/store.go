// Package store holds the authoritative article snapshot for the session
// and applies load/scrape responses under a newest-wins staleness rule.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/backend"
	"github.com/findash/articledesk/app/metrics"
)

// ErrStaleLoad marks a response that lost the race against a newer one and
// was discarded instead of overwriting newer state.
var ErrStaleLoad = errors.New("stale load response discarded")

// ContentSource is the slice of the backend the store pulls from.
type ContentSource interface {
	SavedArticles(ctx context.Context, limit, skip int) ([]article.RawRecord, error)
	Scrape(ctx context.Context, params backend.ScrapeParams) (*backend.ScrapeResult, error)
}

type Store struct {
	mu         sync.RWMutex
	articles   []article.Article
	appliedSeq uint64
	loadedAt   time.Time

	seq    atomic.Uint64
	group  singleflight.Group
	source ContentSource

	savedLimit int
}

func New(source ContentSource, savedLimit int) *Store {
	return &Store{
		source:     source,
		savedLimit: savedLimit,
	}
}

// Articles returns a copy of the current snapshot.
func (s *Store) Articles() []article.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]article.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// Count returns the snapshot size without copying.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// LoadedAt returns when the current snapshot was applied; zero before the
// first load.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Refresh reloads the saved-article collection from the backend. Concurrent
// refreshes collapse into one backend call; every caller gets its result.
func (s *Store) Refresh(ctx context.Context) (int, error) {
	result, err, _ := s.group.Do("refresh", func() (any, error) {
		seq := s.seq.Add(1)

		records, err := s.source.SavedArticles(ctx, s.savedLimit, 0)
		if err != nil {
			return 0, fmt.Errorf("failed to load saved articles: %w", err)
		}

		return s.apply(seq, records, false)
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// Scrape triggers a backend scrape and applies the returned articles as the
// new snapshot. Placeholder records the scraper is known to produce are
// dropped before normalization.
func (s *Store) Scrape(ctx context.Context, params backend.ScrapeParams) (int, string, error) {
	seq := s.seq.Add(1)

	result, err := s.source.Scrape(ctx, params)
	if err != nil {
		return 0, "", fmt.Errorf("scrape request failed: %w", err)
	}

	applied, err := s.apply(seq, result.Articles, true)
	if err != nil {
		return 0, "", err
	}

	slog.Info("Scrape applied",
		"returned", result.TotalArticles, "applied", applied)
	return applied, result.Message, nil
}

// apply normalizes and installs a snapshot. A response whose sequence is
// older than the applied one is discarded: whichever request started last
// wins, regardless of arrival order. Within a snapshot, records sharing an
// identity key collapse to the first occurrence.
func (s *Store) apply(seq uint64, records []article.RawRecord, scraped bool) (int, error) {
	normalized := make([]article.Article, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, record := range records {
		if scraped && article.Droppable(record) {
			continue
		}

		a := article.Normalize(record, i)
		if _, dup := seen[a.IdentityKey]; dup {
			continue
		}
		seen[a.IdentityKey] = struct{}{}
		normalized = append(normalized, a)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedSeq {
		slog.Warn("Discarding stale article snapshot",
			"seq", seq, "applied_seq", s.appliedSeq)
		metrics.StaleSnapshots.Inc()
		return 0, ErrStaleLoad
	}

	s.appliedSeq = seq
	s.articles = normalized
	s.loadedAt = time.Now()

	origin := "refresh"
	if scraped {
		origin = "scrape"
	}
	metrics.SnapshotApplies.WithLabelValues(origin).Inc()

	return len(normalized), nil
}

// StartPeriodicRefresh refreshes the snapshot on a fixed interval until the
// context is cancelled. A zero or negative interval disables it.
func (s *Store) StartPeriodicRefresh(ctx context.Context, interval time.Duration, wg *sync.WaitGroup) {
	if interval <= 0 {
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleLoad) {
					slog.Error("Background refresh failed", "error", err)
				}
			}
		}
	}()
}
