package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"artwork-tracker/models"
)

// stubScraper returns a canned batch per query, for exercising the
// shared searchAll composition without the network.
type stubScraper struct {
	queries []string
	results map[string][]models.Listing
	err     error
	calls   int
}

func (s *stubScraper) Platform() models.Platform { return models.PlatformEbay }

func (s *stubScraper) BuildSearchQueries() []string { return s.queries }

func (s *stubScraper) Close() error { return nil }

func (s *stubScraper) Search(_ context.Context, query string) ([]models.Listing, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *stubScraper) GetListingDetails(_ context.Context, _ string) (*models.Listing, error) {
	return nil, nil
}

func (s *stubScraper) SearchAll(ctx context.Context) ([]models.Listing, error) {
	return searchAll(ctx, s, 0)
}

func listing(id, url, title string) models.Listing {
	return models.Listing{
		Title:     title,
		Platform:  models.PlatformEbay,
		SourceID:  id,
		SourceURL: url,
	}
}

func TestSearchAllDeduplicatesAcrossQueries(t *testing.T) {
	s := &stubScraper{
		queries: []string{"q1", "q2"},
		results: map[string][]models.Listing{
			"q1": {
				listing("101", "https://example.com/101", "Trompe L'oeil Rack"),
				listing("102", "https://example.com/102", "Currency Painting"),
			},
			"q2": {
				listing("101", "https://example.com/101-alt", "Trompe L'oeil Rack"),
				listing("103", "https://example.com/103", "Still Life"),
			},
		},
	}

	got, err := s.SearchAll(context.Background())
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d listings, want 3 (duplicate ID merged)", len(got))
	}
	if s.calls != 2 {
		t.Errorf("Search called %d times, want 2", s.calls)
	}
	if got[0].SourceID != "101" || got[1].SourceID != "102" || got[2].SourceID != "103" {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestSearchAllIsIdempotentOverDuplicateBatches(t *testing.T) {
	batch := []models.Listing{
		listing("201", "https://example.com/201", "Six Fives"),
		listing("202", "https://example.com/202", "Letter Rack"),
	}
	s := &stubScraper{
		queries: []string{"a", "b", "c"},
		results: map[string][]models.Listing{"a": batch, "b": batch, "c": batch},
	}

	got, err := s.SearchAll(context.Background())
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2", len(got))
	}
}

func TestSearchAllPropagatesScraperError(t *testing.T) {
	wantErr := errors.New("browser unavailable")
	s := &stubScraper{queries: []string{"q1"}, err: wantErr}

	_, err := s.SearchAll(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("SearchAll() error = %v, want %v", err, wantErr)
	}
}

func TestMergeListingsFallsBackToURLKey(t *testing.T) {
	seen := make(map[string]bool)
	var merged []models.Listing

	merged = mergeListings(merged, []models.Listing{
		listing("", "https://example.com/a", "A"),
		listing("", "https://example.com/a", "A again"),
		listing("", "https://example.com/b", "B"),
		listing("", "", "no key at all"),
	}, seen)

	if len(merged) != 2 {
		t.Fatalf("got %d listings, want 2 (URL dedup, keyless dropped)", len(merged))
	}
}

func TestSleepCtxHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleepCtx(ctx, time.Minute); err == nil {
		t.Fatal("sleepCtx() = nil, want context error")
	}
}

func TestBuildSearchQueriesTargetThePainter(t *testing.T) {
	scrapers := []Scraper{
		NewEbayScraper(0),
		NewEbayAPIScraper("id", "secret", 0),
		NewArtnetScraper(0),
		NewInvaluableScraper(0),
		NewLiveAuctioneersScraper(0),
	}

	for _, s := range scrapers {
		queries := s.BuildSearchQueries()
		if len(queries) == 0 {
			t.Errorf("%s: no search queries", s.Platform())
		}
	}
}
