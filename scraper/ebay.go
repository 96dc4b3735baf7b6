package scraper

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"artwork-tracker/models"
	"artwork-tracker/parser"

	"github.com/gocolly/colly/v2"
)

const ebayBaseURL = "https://www.ebay.com"

// eBay art category IDs.
const (
	ebayCategoryArt       = 550
	ebayCategoryPaintings = 551
	ebayCategoryPrints    = 360
)

// EbayScraper scrapes eBay search result pages over plain HTTP. It is the
// fallback when Browse API credentials are not configured; eBay may block
// it under load.
type EbayScraper struct {
	collector *colly.Collector
	delay     time.Duration
}

// NewEbayScraper creates the HTML-based eBay scraper with the given
// delay between search queries.
func NewEbayScraper(delay time.Duration) *EbayScraper {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(requestTimeout)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*ebay.*",
		Parallelism: 1,
		Delay:       delay,
	})

	return &EbayScraper{collector: c, delay: delay}
}

func (e *EbayScraper) Platform() models.Platform { return models.PlatformEbay }

// BuildSearchQueries returns eBay-tuned queries. The broader ones carry
// negative keywords to push the novelist's books out of the result set.
func (e *EbayScraper) BuildSearchQueries() []string {
	return []string{
		`"Dan Brown" trompe l'oeil`,
		`"Dan Brown" artist painting`,
		`"Dan Brown" Connecticut artist`,
		`"Dan Brown" "Susan Powell"`,
		`"Daniel Brown" trompe l'oeil`,
		`"Dan Brown" original painting -novel -book -author`,
		`"Dan Brown" vintage postcards painting`,
		`"Dan Brown" rack painting`,
		`"Dan Brown" realist painting`,
	}
}

func (e *EbayScraper) searchURL(query string, categoryID int) string {
	params := url.Values{}
	params.Set("_nkw", query)
	params.Set("_sacat", fmt.Sprintf("%d", categoryID))
	params.Set("_sop", "10") // newly listed first
	params.Set("LH_TitleDesc", "1")
	params.Set("_ipg", "60")
	return fmt.Sprintf("%s/sch/i.html?%s", ebayBaseURL, params.Encode())
}

// Search fetches one search results page and parses its cards. A failed
// request is logged and yields an empty list so one query's outage never
// aborts the pass.
func (e *EbayScraper) Search(ctx context.Context, query string) ([]models.Listing, error) {
	searchURL := e.searchURL(query, ebayCategoryArt)
	log.Printf("Searching eBay: query=%q\n", query)

	html, err := fetchWithColly(ctx, e.collector, searchURL)
	if err != nil {
		log.Printf("Error: eBay search request failed: query=%q err=%v\n", query, err)
		return nil, nil
	}

	listings, err := parser.ParseEbaySearch(html)
	if err != nil {
		log.Printf("Error: failed to parse eBay results: query=%q err=%v\n", query, err)
		return nil, nil
	}

	log.Printf("eBay search complete: query=%q results=%d\n", query, len(listings))
	return listings, nil
}

// GetListingDetails fetches and parses one listing page.
func (e *EbayScraper) GetListingDetails(ctx context.Context, listingURL string) (*models.Listing, error) {
	log.Printf("Fetching eBay listing details: url=%s\n", listingURL)

	html, err := fetchWithColly(ctx, e.collector, listingURL)
	if err != nil {
		log.Printf("Error: eBay listing fetch failed: url=%s err=%v\n", listingURL, err)
		return nil, nil
	}
	if parser.IsBlockedPage(html) {
		log.Printf("Warning: eBay served a challenge page instead of listing: url=%s\n", listingURL)
		return nil, nil
	}

	return parser.ParseEbayListing(html, listingURL)
}

func (e *EbayScraper) SearchAll(ctx context.Context) ([]models.Listing, error) {
	return searchAll(ctx, e, e.delay)
}

// Close is a no-op; colly holds no persistent resources.
func (e *EbayScraper) Close() error { return nil }

// fetchWithColly retrieves one page body through a cloned collector so
// callbacks never accumulate across requests.
func fetchWithColly(ctx context.Context, base *colly.Collector, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := base.Clone()

	var body string
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: %w", pageURL, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("visit %s: %w", pageURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}
