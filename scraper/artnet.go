package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"artwork-tracker/models"
	"artwork-tracker/parser"

	"github.com/gocolly/colly/v2"
)

const artnetBaseURL = "https://www.artnet.com"

// ArtnetScraper walks artnet artist pages. artnet URLs are slug-based
// rather than keyword searches, so "queries" here are artist slugs: the
// painter is usually dan-brown-2 because the novelist occupies dan-brown.
type ArtnetScraper struct {
	collector *colly.Collector
	delay     time.Duration
}

func NewArtnetScraper(delay time.Duration) *ArtnetScraper {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(requestTimeout)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*artnet.*",
		Parallelism: 1,
		Delay:       delay,
	})

	return &ArtnetScraper{collector: c, delay: delay}
}

func (a *ArtnetScraper) Platform() models.Platform { return models.PlatformArtnet }

// BuildSearchQueries returns candidate artist slugs, most likely first.
func (a *ArtnetScraper) BuildSearchQueries() []string {
	return []string{
		"dan-brown-2",
		"dan-brown",
	}
}

// Search fetches one artist's auction results and past works. A slug
// that 404s or resolves to the novelist's page yields an empty list.
func (a *ArtnetScraper) Search(ctx context.Context, artistSlug string) ([]models.Listing, error) {
	log.Printf("Searching artnet: artist=%s\n", artistSlug)

	var merged []models.Listing
	seen := make(map[string]bool)

	auctionURL := fmt.Sprintf("%s/artists/%s/auction-results", artnetBaseURL, artistSlug)
	html, err := fetchWithColly(ctx, a.collector, auctionURL)
	if err != nil {
		log.Printf("Warning: artnet auction results unavailable: artist=%s err=%v\n", artistSlug, err)
	} else if parser.IsArtnetAuthorPage(html) {
		log.Printf("artnet slug resolves to the novelist, skipping: artist=%s\n", artistSlug)
		return nil, nil
	} else {
		listings, err := parser.ParseArtnetAuctionResults(html, artistSlug, artnetBaseURL)
		if err != nil {
			log.Printf("Error: failed to parse artnet auction results: artist=%s err=%v\n", artistSlug, err)
		} else {
			merged = mergeListings(merged, listings, seen)
		}
	}

	if err := sleepCtx(ctx, a.delay); err != nil {
		return merged, err
	}

	artistURL := fmt.Sprintf("%s/artists/%s/", artnetBaseURL, artistSlug)
	html, err = fetchWithColly(ctx, a.collector, artistURL)
	if err != nil {
		log.Printf("Warning: artnet artist page unavailable: artist=%s err=%v\n", artistSlug, err)
	} else if !parser.IsArtnetAuthorPage(html) {
		listings, err := parser.ParseArtnetArtistWorks(html, artistSlug, artnetBaseURL)
		if err != nil {
			log.Printf("Error: failed to parse artnet artist works: artist=%s err=%v\n", artistSlug, err)
		} else {
			merged = mergeListings(merged, listings, seen)
		}
	}

	log.Printf("artnet search complete: artist=%s results=%d\n", artistSlug, len(merged))
	return merged, nil
}

// GetListingDetails fetches a single artwork page.
func (a *ArtnetScraper) GetListingDetails(ctx context.Context, listingURL string) (*models.Listing, error) {
	html, err := fetchWithColly(ctx, a.collector, listingURL)
	if err != nil {
		log.Printf("Error: artnet artwork fetch failed: url=%s err=%v\n", listingURL, err)
		return nil, nil
	}
	if parser.IsBlockedPage(html) {
		log.Printf("Warning: artnet served a challenge page: url=%s\n", listingURL)
		return nil, nil
	}
	return parser.ParseArtnetArtwork(html, listingURL, artnetBaseURL)
}

func (a *ArtnetScraper) SearchAll(ctx context.Context) ([]models.Listing, error) {
	return searchAll(ctx, a, a.delay)
}

func (a *ArtnetScraper) Close() error { return nil }
