package scraper

import (
	"context"
	"log"
	"net/url"
	"time"

	"artwork-tracker/models"
	"artwork-tracker/parser"
)

const invaluableBaseURL = "https://www.invaluable.com"

// InvaluableScraper covers invaluable.com auction lots. The site renders
// its result grid client-side, so it needs the headless browser.
type InvaluableScraper struct {
	browserScraper
	delay time.Duration
}

func NewInvaluableScraper(delay time.Duration) *InvaluableScraper {
	return &InvaluableScraper{delay: delay}
}

func (s *InvaluableScraper) Platform() models.Platform { return models.PlatformInvaluable }

func (s *InvaluableScraper) BuildSearchQueries() []string {
	return []string{
		"dan brown trompe l'oeil",
		"dan brown artist painting",
		"dan brown connecticut artist",
		"dan brown oil painting currency",
	}
}

// Search renders one search page and parses the lot cards. A blocked or
// failed page yields an empty list; a missing browser is an error.
func (s *InvaluableScraper) Search(ctx context.Context, query string) ([]models.Listing, error) {
	searchURL := invaluableBaseURL + "/search?query=" + url.QueryEscape(query)
	log.Printf("Searching Invaluable: query=%q\n", query)

	html, err := s.fetchRendered(ctx, searchURL, 3*time.Second)
	if err != nil {
		if s.browser == nil {
			return nil, err
		}
		log.Printf("Error: Invaluable search failed: query=%q err=%v\n", query, err)
		return nil, nil
	}
	if parser.IsBlockedPage(html) {
		log.Printf("Warning: Invaluable served a challenge page, treating as no results: query=%q\n", query)
		return nil, nil
	}

	listings, err := parser.ParseInvaluableSearch(html)
	if err != nil {
		log.Printf("Error: failed to parse Invaluable results: query=%q err=%v\n", query, err)
		return nil, nil
	}

	log.Printf("Invaluable search complete: query=%q results=%d\n", query, len(listings))
	return listings, nil
}

// GetListingDetails renders one lot page.
func (s *InvaluableScraper) GetListingDetails(ctx context.Context, listingURL string) (*models.Listing, error) {
	html, err := s.fetchRendered(ctx, listingURL, 2*time.Second)
	if err != nil {
		if s.browser == nil {
			return nil, err
		}
		log.Printf("Error: Invaluable lot fetch failed: url=%s err=%v\n", listingURL, err)
		return nil, nil
	}
	if parser.IsBlockedPage(html) {
		log.Printf("Warning: Invaluable served a challenge page: url=%s\n", listingURL)
		return nil, nil
	}
	return parser.ParseLotDetails(html, listingURL, models.PlatformInvaluable)
}

func (s *InvaluableScraper) SearchAll(ctx context.Context) ([]models.Listing, error) {
	return searchAll(ctx, s, s.delay)
}

func (s *InvaluableScraper) Close() error { return s.close() }
