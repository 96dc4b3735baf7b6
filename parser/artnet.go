package parser

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"artwork-tracker/models"

	"github.com/PuerkitoBio/goquery"
)

// IsArtnetAuthorPage reports whether an Artnet artist page belongs to the
// namesake novelist rather than the painter, based on the artist header.
func IsArtnetAuthorPage(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	header := strings.ToLower(doc.Find("div.artist-header").Text())
	if header == "" {
		return false
	}
	return strings.Contains(header, "novelist") ||
		strings.Contains(header, "da vinci") ||
		strings.Contains(header, "author")
}

// ParseArtnetAuctionResults extracts auction records from an Artnet
// artist auction-results page.
func ParseArtnetAuctionResults(html, artistSlug, baseURL string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Artnet HTML: %w", err)
	}

	results := doc.Find("div.auction-result")
	if results.Length() == 0 {
		results = doc.Find("div.lot-item")
	}
	if results.Length() == 0 {
		results = doc.Find("article.artwork")
	}

	var listings []models.Listing
	results.Each(func(i int, s *goquery.Selection) {
		listing := parseArtnetAuctionResult(s, artistSlug, baseURL)
		if listing != nil {
			listings = append(listings, *listing)
		}
	})

	return listings, nil
}

func parseArtnetAuctionResult(s *goquery.Selection, artistSlug, baseURL string) *models.Listing {
	title := strings.TrimSpace(s.Find("h2").First().Text())
	if title == "" {
		title = strings.TrimSpace(s.Find("a.title, span.title").First().Text())
	}
	if title == "" {
		return nil
	}

	href := s.Find("a[href]").First().AttrOr("href", "")
	if href == "" {
		return nil
	}
	itemURL := resolveURL(baseURL, href)

	price, currency := ExtractPrice(s.Find("span.price, div.price").First().Text())

	description := strings.TrimSpace(s.Find("p").First().Text())
	if description == "" {
		description = strings.TrimSpace(s.Find("div.details").First().Text())
	}

	var images []string
	if src := s.Find("img").First().AttrOr("src", ""); src != "" {
		images = append(images, resolveURL(baseURL, src))
	}

	var dateListing *time.Time
	dateText := strings.TrimSpace(s.Find("span.date").First().Text())
	if dateText != "" {
		for _, layout := range []string{"01/02/2006", "01/02/06", "January 2, 2006"} {
			if t, err := time.Parse(layout, dateText); err == nil {
				dateListing = &t
				break
			}
		}
	}

	return &models.Listing{
		Title:       title,
		Description: description,
		Platform:    models.PlatformArtnet,
		SourceURL:   itemURL,
		SourceID:    lastPathSegment(itemURL),
		Price:       price,
		Currency:    currency,
		ImageURLs:   images,
		DateListing: dateListing,
		RawData:     map[string]any{"artist_slug": artistSlug},
	}
}

// ParseArtnetArtistWorks extracts current artworks from an Artnet artist
// page. Entries without an artwork link are skipped.
func ParseArtnetArtistWorks(html, artistSlug, baseURL string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Artnet HTML: %w", err)
	}

	items := doc.Find("div.artwork-item")
	if items.Length() == 0 {
		items = doc.Find("a.details-link")
	}

	var listings []models.Listing
	items.Each(func(i int, s *goquery.Selection) {
		if i >= 20 {
			return
		}

		var href, title string
		if goquery.NodeName(s) == "a" {
			href = s.AttrOr("href", "")
			title = strings.TrimSpace(s.Text())
		} else {
			href = s.Find("a[href]").First().AttrOr("href", "")
			title = strings.TrimSpace(s.Find("h3, span.title").First().Text())
			if title == "" {
				title = "Unknown"
			}
		}
		if href == "" {
			return
		}

		itemURL := resolveURL(baseURL, href)
		if !strings.Contains(itemURL, "/artists/") && !strings.Contains(itemURL, "/artwork/") {
			return
		}

		var images []string
		if src := s.Find("img").First().AttrOr("src", ""); src != "" {
			images = append(images, resolveURL(baseURL, src))
		}

		listings = append(listings, models.Listing{
			Title:     title,
			Platform:  models.PlatformArtnet,
			SourceURL: itemURL,
			SourceID:  lastPathSegment(itemURL),
			Currency:  "USD",
			ImageURLs: images,
			RawData:   map[string]any{"artist_slug": artistSlug},
		})
	})

	return listings, nil
}

// ParseArtnetArtwork extracts a single artwork detail page.
func ParseArtnetArtwork(html, pageURL, baseURL string) (*models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Artnet artwork HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = doc.Find("meta[property='og:title']").AttrOr("content", "Unknown")
	}

	description := strings.TrimSpace(doc.Find("div.description").First().Text())
	if description == "" {
		description = doc.Find("meta[property='og:description']").AttrOr("content", "")
	}

	price, currency := ExtractPrice(doc.Find("span.price, div.price").First().Text())

	var images []string
	if og := doc.Find("meta[property='og:image']").AttrOr("content", ""); og != "" {
		images = append(images, og)
	}
	doc.Find("img[class*='artwork'], img[class*='gallery'], img[class*='main']").Each(func(i int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			src = s.AttrOr("data-src", "")
		}
		if src != "" && len(images) < 5 {
			images = append(images, resolveURL(baseURL, src))
		}
	})

	return &models.Listing{
		Title:       title,
		Description: description,
		Platform:    models.PlatformArtnet,
		SourceURL:   pageURL,
		SourceID:    lastPathSegment(pageURL),
		Price:       price,
		Currency:    currency,
		ImageURLs:   images,
	}, nil
}

// resolveURL joins a possibly relative href against the site base URL.
func resolveURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func lastPathSegment(u string) string {
	trimmed := strings.TrimRight(u, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		return trimmed[idx+1:]
	}
	return trimmed
}
