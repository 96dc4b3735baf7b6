package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"artwork-tracker/config"
	"artwork-tracker/filter"
	"artwork-tracker/models"
	"artwork-tracker/scraper"
)

// RunStats summarizes one full pass across every platform.
type RunStats struct {
	TotalCollected int
	Passed         int
	Elapsed        time.Duration
}

// Orchestrator drives the registered scrapers through full passes and
// feeds everything they collect into the confidence scorer.
type Orchestrator struct {
	scrapers []scraper.Scraper
	scorer   *filter.Scorer
	closed   bool
}

// New assembles the scraper set from configuration:
//   - eBay runs through the Browse API when credentials are set,
//     otherwise through the HTML fallback
//   - artnet always runs (plain HTTP)
//   - the browser-backed auction sites run only when enabled AND a
//     Chrome binary is actually available
func New(cfg *config.Config, scorer *filter.Scorer) *Orchestrator {
	secs := func(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

	var scrapers []scraper.Scraper

	if cfg.HasEbayCredentials() {
		log.Println("Using eBay Browse API scraper")
		scrapers = append(scrapers, scraper.NewEbayAPIScraper(
			cfg.EbayClientID, cfg.EbayClientSecret, secs(cfg.Scraping.EbayAPIDelaySeconds)))
	} else {
		log.Println("No eBay API credentials, falling back to HTML scraper")
		scrapers = append(scrapers, scraper.NewEbayScraper(secs(cfg.Scraping.EbayDelaySeconds)))
	}

	scrapers = append(scrapers, scraper.NewArtnetScraper(secs(cfg.Scraping.ArtnetDelaySeconds)))

	if cfg.Scraping.IncludeBrowser {
		if scraper.BrowserAvailable() {
			scrapers = append(scrapers,
				scraper.NewInvaluableScraper(secs(cfg.Scraping.InvaluableDelay)),
				scraper.NewLiveAuctioneersScraper(secs(cfg.Scraping.LiveAuctioneersDelay)),
			)
		} else {
			log.Println("Warning: browser scrapers requested but no Chrome/Chromium found, skipping Invaluable and LiveAuctioneers")
		}
	}

	return &Orchestrator{scrapers: scrapers, scorer: scorer}
}

// NewWithScrapers builds an orchestrator over an explicit scraper set.
func NewWithScrapers(scorer *filter.Scorer, scrapers ...scraper.Scraper) *Orchestrator {
	return &Orchestrator{scrapers: scrapers, scorer: scorer}
}

// Platforms lists the platforms this orchestrator will cover.
func (o *Orchestrator) Platforms() []models.Platform {
	platforms := make([]models.Platform, 0, len(o.scrapers))
	for _, s := range o.scrapers {
		platforms = append(platforms, s.Platform())
	}
	return platforms
}

// RunAll runs every scraper sequentially and scores the merged results.
// One scraper failing never aborts the pass: its error is logged and the
// others still run. Every scraper is closed after its turn, failed or
// not. Listings are deduplicated across platforms by URL, first
// occurrence wins.
func (o *Orchestrator) RunAll(ctx context.Context) ([]filter.ScoringResult, RunStats, error) {
	start := time.Now()
	log.Printf("Starting full scrape pass: platforms=%d\n", len(o.scrapers))

	var collected []models.Listing
	seen := make(map[string]bool)

	for _, s := range o.scrapers {
		if err := ctx.Err(); err != nil {
			return nil, RunStats{}, err
		}

		listings, err := s.SearchAll(ctx)
		if err != nil {
			log.Printf("Error: scraper failed, continuing with remaining platforms: platform=%s err=%v\n",
				s.Platform(), err)
		}
		o.closeScraper(s)

		for _, listing := range listings {
			if listing.SourceURL == "" || seen[listing.SourceURL] {
				continue
			}
			seen[listing.SourceURL] = true
			collected = append(collected, listing)
		}
	}

	results := o.scorer.FilterListings(collected)

	stats := RunStats{
		TotalCollected: len(collected),
		Passed:         len(results),
		Elapsed:        time.Since(start),
	}
	log.Printf("Scrape pass complete: collected=%d passed=%d elapsed=%s\n",
		stats.TotalCollected, stats.Passed, stats.Elapsed.Round(time.Millisecond))

	return results, stats, nil
}

// RunScraper runs a single platform's scraper and scores its results.
func (o *Orchestrator) RunScraper(ctx context.Context, platform models.Platform) ([]filter.ScoringResult, error) {
	for _, s := range o.scrapers {
		if s.Platform() != platform {
			continue
		}
		listings, err := s.SearchAll(ctx)
		o.closeScraper(s)
		if err != nil {
			return nil, fmt.Errorf("scrape %s: %w", platform, err)
		}
		return o.scorer.FilterListings(listings), nil
	}
	return nil, fmt.Errorf("no scraper registered for platform %q", platform)
}

// GetListingDetails fetches one listing's full page through the matching
// scraper and scores it individually. Unlike RunAll this returns the
// result even when it was rejected, so a human can inspect why.
func (o *Orchestrator) GetListingDetails(ctx context.Context, listingURL string, platform models.Platform) (*filter.ScoringResult, error) {
	for _, s := range o.scrapers {
		if s.Platform() != platform {
			continue
		}
		listing, err := s.GetListingDetails(ctx, listingURL)
		o.closeScraper(s)
		if err != nil {
			return nil, fmt.Errorf("fetch details from %s: %w", platform, err)
		}
		if listing == nil {
			return nil, nil
		}
		result := o.scorer.Score(*listing)
		return &result, nil
	}
	return nil, fmt.Errorf("no scraper registered for platform %q", platform)
}

func (o *Orchestrator) closeScraper(s scraper.Scraper) {
	if err := s.Close(); err != nil {
		log.Printf("Warning: failed to close scraper: platform=%s err=%v\n", s.Platform(), err)
	}
}

// Close shuts every scraper down. Scraper Close is required to be safe
// to call repeatedly, so this is fine after runs that already closed
// them. Idempotent at the orchestrator level too.
func (o *Orchestrator) Close() {
	if o.closed {
		return
	}
	o.closed = true
	for _, s := range o.scrapers {
		o.closeScraper(s)
	}
}
