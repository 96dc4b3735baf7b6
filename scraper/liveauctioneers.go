package scraper

import (
	"context"
	"log"
	"net/url"
	"time"

	"artwork-tracker/models"
	"artwork-tracker/parser"
)

const liveAuctioneersBaseURL = "https://www.liveauctioneers.com"

// LiveAuctioneersScraper covers liveauctioneers.com. Like Invaluable the
// result grid is client-rendered, so it runs on the headless browser.
type LiveAuctioneersScraper struct {
	browserScraper
	delay time.Duration
}

func NewLiveAuctioneersScraper(delay time.Duration) *LiveAuctioneersScraper {
	return &LiveAuctioneersScraper{delay: delay}
}

func (s *LiveAuctioneersScraper) Platform() models.Platform { return models.PlatformLiveAuctioneers }

func (s *LiveAuctioneersScraper) BuildSearchQueries() []string {
	return []string{
		"dan brown trompe l'oeil",
		"dan brown artist oil painting",
		"dan brown connecticut painter",
		"dan brown currency painting",
		"dan brown still life rack",
	}
}

func (s *LiveAuctioneersScraper) Search(ctx context.Context, query string) ([]models.Listing, error) {
	searchURL := liveAuctioneersBaseURL + "/search/?keyword=" + url.QueryEscape(query)
	log.Printf("Searching LiveAuctioneers: query=%q\n", query)

	html, err := s.fetchRendered(ctx, searchURL, 3*time.Second)
	if err != nil {
		if s.browser == nil {
			return nil, err
		}
		log.Printf("Error: LiveAuctioneers search failed: query=%q err=%v\n", query, err)
		return nil, nil
	}
	if parser.IsBlockedPage(html) {
		log.Printf("Warning: LiveAuctioneers served a challenge page, treating as no results: query=%q\n", query)
		return nil, nil
	}

	listings, err := parser.ParseLiveAuctioneersSearch(html)
	if err != nil {
		log.Printf("Error: failed to parse LiveAuctioneers results: query=%q err=%v\n", query, err)
		return nil, nil
	}

	log.Printf("LiveAuctioneers search complete: query=%q results=%d\n", query, len(listings))
	return listings, nil
}

func (s *LiveAuctioneersScraper) GetListingDetails(ctx context.Context, listingURL string) (*models.Listing, error) {
	html, err := s.fetchRendered(ctx, listingURL, 2*time.Second)
	if err != nil {
		if s.browser == nil {
			return nil, err
		}
		log.Printf("Error: LiveAuctioneers item fetch failed: url=%s err=%v\n", listingURL, err)
		return nil, nil
	}
	if parser.IsBlockedPage(html) {
		log.Printf("Warning: LiveAuctioneers served a challenge page: url=%s\n", listingURL)
		return nil, nil
	}
	return parser.ParseLotDetails(html, listingURL, models.PlatformLiveAuctioneers)
}

func (s *LiveAuctioneersScraper) SearchAll(ctx context.Context) ([]models.Listing, error) {
	return searchAll(ctx, s, s.delay)
}

func (s *LiveAuctioneersScraper) Close() error { return s.close() }
