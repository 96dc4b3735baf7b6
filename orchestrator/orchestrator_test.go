package orchestrator

import (
	"context"
	"errors"
	"testing"

	"artwork-tracker/filter"
	"artwork-tracker/models"
)

// fakeScraper is a canned-result scraper for orchestrator tests.
type fakeScraper struct {
	platform   models.Platform
	listings   []models.Listing
	searchErr  error
	closeCalls int
}

func (f *fakeScraper) Platform() models.Platform { return f.platform }

func (f *fakeScraper) BuildSearchQueries() []string { return []string{"q"} }

func (f *fakeScraper) Search(_ context.Context, _ string) ([]models.Listing, error) {
	return f.listings, f.searchErr
}

func (f *fakeScraper) GetListingDetails(_ context.Context, url string) (*models.Listing, error) {
	for _, l := range f.listings {
		if l.SourceURL == url {
			detailed := l
			return &detailed, nil
		}
	}
	return nil, nil
}

func (f *fakeScraper) SearchAll(_ context.Context) ([]models.Listing, error) {
	return f.listings, f.searchErr
}

func (f *fakeScraper) Close() error {
	f.closeCalls++
	return nil
}

func painterListing(platform models.Platform, url, title string) models.Listing {
	return models.Listing{
		Title:     title,
		Platform:  platform,
		SourceURL: url,
	}
}

func TestRunAllContinuesPastFailingScraper(t *testing.T) {
	working := &fakeScraper{
		platform: models.PlatformEbay,
		listings: []models.Listing{
			painterListing(models.PlatformEbay, "https://ebay.com/itm/1", "Dan Brown trompe l'oeil painting"),
		},
	}
	broken := &fakeScraper{
		platform:  models.PlatformInvaluable,
		searchErr: errors.New("browser unavailable"),
	}
	alsoWorking := &fakeScraper{
		platform: models.PlatformArtnet,
		listings: []models.Listing{
			painterListing(models.PlatformArtnet, "https://artnet.com/a/1", "Dan Brown Susan Powell Fine Art still life"),
		},
	}

	o := NewWithScrapers(filter.NewDefaultScorer(), working, broken, alsoWorking)
	results, stats, err := o.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	if stats.TotalCollected != 2 {
		t.Errorf("TotalCollected = %d, want 2 (both working scrapers contribute)", stats.TotalCollected)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	for _, f := range []*fakeScraper{working, broken, alsoWorking} {
		if f.closeCalls != 1 {
			t.Errorf("%s close calls = %d, want 1 (closed even on failure)", f.platform, f.closeCalls)
		}
	}
}

func TestRunAllDeduplicatesAcrossPlatformsByURL(t *testing.T) {
	first := &fakeScraper{
		platform: models.PlatformEbay,
		listings: []models.Listing{
			painterListing(models.PlatformEbay, "https://example.com/same", "Dan Brown trompe l'oeil"),
		},
	}
	second := &fakeScraper{
		platform: models.PlatformArtnet,
		listings: []models.Listing{
			painterListing(models.PlatformArtnet, "https://example.com/same", "Dan Brown trompe l'oeil"),
			painterListing(models.PlatformArtnet, "https://example.com/other", "Dan Brown rack painting"),
		},
	}

	o := NewWithScrapers(filter.NewDefaultScorer(), first, second)
	_, stats, err := o.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	if stats.TotalCollected != 2 {
		t.Errorf("TotalCollected = %d, want 2 (shared URL kept once, first seen wins)", stats.TotalCollected)
	}
}

func TestRunAllWithNoResultsIsValid(t *testing.T) {
	empty := &fakeScraper{platform: models.PlatformEbay}

	o := NewWithScrapers(filter.NewDefaultScorer(), empty)
	results, stats, err := o.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if len(results) != 0 || stats.TotalCollected != 0 {
		t.Errorf("results=%d collected=%d, want zero of each", len(results), stats.TotalCollected)
	}
}

func TestRunScraperUnknownPlatform(t *testing.T) {
	o := NewWithScrapers(filter.NewDefaultScorer(), &fakeScraper{platform: models.PlatformEbay})

	if _, err := o.RunScraper(context.Background(), models.PlatformArtnet); err == nil {
		t.Fatal("RunScraper() = nil error for unregistered platform")
	}
}

func TestGetListingDetailsScoresEvenRejected(t *testing.T) {
	s := &fakeScraper{
		platform: models.PlatformEbay,
		listings: []models.Listing{
			{
				Title:     "The Da Vinci Code hardcover novel",
				Platform:  models.PlatformEbay,
				SourceURL: "https://ebay.com/itm/42",
			},
		},
	}

	o := NewWithScrapers(filter.NewDefaultScorer(), s)
	result, err := o.GetListingDetails(context.Background(), "https://ebay.com/itm/42", models.PlatformEbay)
	if err != nil {
		t.Fatalf("GetListingDetails() error = %v", err)
	}
	if result == nil {
		t.Fatal("result is nil, want scored result even when rejected")
	}
	if !result.Rejected {
		t.Error("novel listing not rejected")
	}
}

func TestGetListingDetailsGoneListing(t *testing.T) {
	o := NewWithScrapers(filter.NewDefaultScorer(), &fakeScraper{platform: models.PlatformEbay})

	result, err := o.GetListingDetails(context.Background(), "https://ebay.com/itm/gone", models.PlatformEbay)
	if err != nil {
		t.Fatalf("GetListingDetails() error = %v", err)
	}
	if result != nil {
		t.Errorf("result = %v, want nil for unavailable listing", result)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a := &fakeScraper{platform: models.PlatformEbay}
	b := &fakeScraper{platform: models.PlatformArtnet}

	o := NewWithScrapers(filter.NewDefaultScorer(), a, b)
	o.Close()
	o.Close()

	if a.closeCalls != 1 || b.closeCalls != 1 {
		t.Errorf("close calls = (%d, %d), want (1, 1)", a.closeCalls, b.closeCalls)
	}
}
