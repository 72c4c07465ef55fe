package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/backend"
)

type fakeSource struct {
	mu       sync.Mutex
	saved    []article.RawRecord
	savedErr error
	calls    int

	scrapeFn func(params backend.ScrapeParams) (*backend.ScrapeResult, error)
}

func (f *fakeSource) SavedArticles(_ context.Context, limit, skip int) ([]article.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.savedErr != nil {
		return nil, f.savedErr
	}
	return f.saved, nil
}

func (f *fakeSource) Scrape(_ context.Context, params backend.ScrapeParams) (*backend.ScrapeResult, error) {
	return f.scrapeFn(params)
}

func record(link, title string) article.RawRecord {
	return article.RawRecord{Link: link, Title: title, Text: "Body text for " + title}
}

func TestRefresh_PopulatesSnapshot(t *testing.T) {
	source := &fakeSource{saved: []article.RawRecord{
		record("https://example.com/a", "First"),
		record("https://example.com/b", "Second"),
	}}
	s := New(source, 100)

	count, err := s.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, s.Count())
	assert.False(t, s.LoadedAt().IsZero())
}

func TestRefresh_SourceError(t *testing.T) {
	source := &fakeSource{savedErr: errors.New("backend down")}
	s := New(source, 100)

	_, err := s.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "backend down")
	assert.Zero(t, s.Count())
	assert.True(t, s.LoadedAt().IsZero())
}

func TestRefresh_DuplicateIdentityKeysCollapseToFirst(t *testing.T) {
	source := &fakeSource{saved: []article.RawRecord{
		record("https://example.com/a", "First occurrence"),
		record("https://example.com/b", "Other"),
		record("https://example.com/a", "Second occurrence"),
	}}
	s := New(source, 100)

	count, err := s.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)

	articles := s.Articles()
	require.Len(t, articles, 2)
	assert.Equal(t, "First occurrence", articles[0].Title)
}

func TestScrape_DropsPlaceholderRecords(t *testing.T) {
	source := &fakeSource{scrapeFn: func(backend.ScrapeParams) (*backend.ScrapeResult, error) {
		return &backend.ScrapeResult{
			Articles: []article.RawRecord{
				record("https://example.com/a", "Markets rally on rate cut"),
				{Link: "https://example.com/ad", Title: "Dell Latitude 5440 review", Text: "Laptop body"},
				{Link: "https://example.com/empty"},
			},
			TotalArticles: 3,
			Message:       "scraped",
		}, nil
	}}
	s := New(source, 100)

	count, msg, err := s.Scrape(context.Background(), backend.ScrapeParams{Count: 3})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "scraped", msg)
	assert.Equal(t, 1, s.Count())
}

func TestScrape_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	slowResult := &backend.ScrapeResult{
		Articles: []article.RawRecord{record("https://example.com/old", "Old snapshot")},
	}
	fastResult := &backend.ScrapeResult{
		Articles: []article.RawRecord{record("https://example.com/new", "New snapshot")},
	}

	var first sync.Once
	source := &fakeSource{}
	source.scrapeFn = func(backend.ScrapeParams) (*backend.ScrapeResult, error) {
		slow := false
		first.Do(func() { slow = true })
		if slow {
			close(started)
			<-release
			return slowResult, nil
		}
		return fastResult, nil
	}
	s := New(source, 100)

	staleErr := make(chan error, 1)
	go func() {
		_, _, err := s.Scrape(context.Background(), backend.ScrapeParams{})
		staleErr <- err
	}()
	<-started

	// The later request finishes first and wins
	count, _, err := s.Scrape(context.Background(), backend.ScrapeParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	close(release)
	err = <-staleErr
	assert.ErrorIs(t, err, ErrStaleLoad)

	articles := s.Articles()
	require.Len(t, articles, 1)
	assert.Equal(t, "New snapshot", articles[0].Title, "stale response must not overwrite the newer snapshot")
}

func TestRefresh_ConcurrentCallsCollapse(t *testing.T) {
	source := &fakeSource{saved: []article.RawRecord{record("https://example.com/a", "Only")}}
	s := New(source, 100)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	source.mu.Lock()
	calls := source.calls
	source.mu.Unlock()
	assert.LessOrEqual(t, calls, 8)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestStartPeriodicRefresh_StopsOnCancel(t *testing.T) {
	source := &fakeSource{saved: []article.RawRecord{record("https://example.com/a", "Only")}}
	s := New(source, 100)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	s.StartPeriodicRefresh(ctx, 5*time.Millisecond, &wg)

	assert.Eventually(t, func() bool {
		return s.Count() == 1
	}, time.Second, time.Millisecond)

	cancel()
	wg.Wait()
}

func TestStartPeriodicRefresh_DisabledInterval(t *testing.T) {
	s := New(&fakeSource{}, 100)

	var wg sync.WaitGroup
	s.StartPeriodicRefresh(context.Background(), 0, &wg)
	wg.Wait() // returns immediately, no goroutine started
	assert.Zero(t, s.Count())
}
