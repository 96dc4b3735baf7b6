package parser

import (
	"fmt"
	"regexp"
	"strings"

	"artwork-tracker/models"

	"github.com/PuerkitoBio/goquery"
)

// IsBlockedPage reports whether a rendered page is a bot challenge rather
// than real content. Callers treat this as "no results", not an error.
func IsBlockedPage(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "captcha") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "you have been blocked")
}

var invaluableLotIDRe = regexp.MustCompile(`(?i)/auction-lot/[^/]+-([a-z0-9]+)/?$`)
var liveAuctioneersItemIDRe = regexp.MustCompile(`/item/(\d+)`)

// ExtractInvaluableLotID pulls the lot ID suffix out of an Invaluable
// auction-lot URL, falling back to the last path segment.
func ExtractInvaluableLotID(u string) string {
	if m := invaluableLotIDRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return lastPathSegment(u)
}

// ExtractLiveAuctioneersItemID pulls the numeric item ID out of a
// LiveAuctioneers /item/ URL. Empty when the URL has no item segment.
func ExtractLiveAuctioneersItemID(u string) string {
	if m := liveAuctioneersItemIDRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}

// lotPageRules describe how to read one auction site's rendered markup.
// Invaluable and LiveAuctioneers render near-identical card grids with
// different class names, so both searches share one parser.
type lotPageRules struct {
	platform      models.Platform
	baseURL       string
	cardSelectors []string
	linkSelector  string
	extractID     func(string) string
}

var invaluableRules = lotPageRules{
	platform:      models.PlatformInvaluable,
	baseURL:       "https://www.invaluable.com",
	cardSelectors: []string{".search-result-item", ".lot-card", "[data-testid='lot-card']", ".auction-lot", "article.lot"},
	linkSelector:  "a[href*='/auction-lot/']",
	extractID:     ExtractInvaluableLotID,
}

var liveAuctioneersRules = lotPageRules{
	platform:      models.PlatformLiveAuctioneers,
	baseURL:       "https://www.liveauctioneers.com",
	cardSelectors: []string{"[data-testid='lot-card']", ".lot-card", ".search-result-item", "article.lot", ".item-card"},
	linkSelector:  "a[href*='/item/']",
	extractID:     ExtractLiveAuctioneersItemID,
}

// ParseInvaluableSearch extracts lot listings from a rendered Invaluable
// search page.
func ParseInvaluableSearch(html string) ([]models.Listing, error) {
	return parseLotSearch(html, invaluableRules)
}

// ParseLiveAuctioneersSearch extracts lot listings from a rendered
// LiveAuctioneers search page.
func ParseLiveAuctioneersSearch(html string) ([]models.Listing, error) {
	return parseLotSearch(html, liveAuctioneersRules)
}

func parseLotSearch(html string, rules lotPageRules) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s HTML: %w", rules.platform, err)
	}

	var cards *goquery.Selection
	for _, sel := range rules.cardSelectors {
		found := doc.Find(sel)
		if found.Length() > 0 {
			cards = found
			break
		}
	}

	var listings []models.Listing

	if cards == nil {
		// No structured cards; fall back to bare lot links.
		seen := map[string]bool{}
		doc.Find(rules.linkSelector).Each(func(i int, s *goquery.Selection) {
			if len(listings) >= 30 {
				return
			}
			href := s.AttrOr("href", "")
			title := strings.TrimSpace(s.Text())
			if href == "" || title == "" || seen[href] {
				return
			}
			seen[href] = true
			if len(title) > 200 {
				title = title[:200]
			}
			u := resolveURL(rules.baseURL, href)
			listings = append(listings, models.Listing{
				Title:     title,
				Platform:  rules.platform,
				SourceURL: u,
				SourceID:  rules.extractID(u),
				Currency:  "USD",
			})
		})
		return listings, nil
	}

	cards.Each(func(i int, s *goquery.Selection) {
		if i >= 20 {
			return
		}
		listing := parseLotCard(s, rules)
		if listing != nil {
			listings = append(listings, *listing)
		}
	})

	return listings, nil
}

func parseLotCard(s *goquery.Selection, rules lotPageRules) *models.Listing {
	title := strings.TrimSpace(s.Find("h2, h3, .title, .lot-title, [data-testid='title']").First().Text())
	if title == "" {
		// First text line of the card.
		title = strings.TrimSpace(strings.SplitN(s.Text(), "\n", 2)[0])
	}
	if len(title) > 200 {
		title = title[:200]
	}

	link := s.Find(rules.linkSelector).First()
	if link.Length() == 0 {
		link = s.Find("a[href]").First()
	}
	href := link.AttrOr("href", "")
	if href == "" {
		return nil
	}
	u := resolveURL(rules.baseURL, href)

	price, currency := ExtractPrice(s.Find(".price, .estimate, .current-bid, [data-testid='price']").First().Text())

	description := strings.TrimSpace(s.Find(".description, .lot-description, p").First().Text())
	if len(description) > 500 {
		description = description[:500]
	}

	seller := strings.TrimSpace(s.Find(".auction-house, .house-name, .auctioneer, .seller").First().Text())
	location := strings.TrimSpace(s.Find(".location, .auction-location").First().Text())

	var images []string
	img := s.Find("img").First()
	src := img.AttrOr("src", "")
	if src == "" {
		src = img.AttrOr("data-src", "")
	}
	if src != "" {
		lower := strings.ToLower(src)
		if !strings.Contains(lower, "placeholder") && !strings.Contains(lower, "blank") {
			images = append(images, resolveURL(rules.baseURL, src))
		}
	}

	return &models.Listing{
		Title:       title,
		Description: description,
		Platform:    rules.platform,
		SourceURL:   u,
		SourceID:    rules.extractID(u),
		Price:       price,
		Currency:    currency,
		SellerName:  seller,
		Location:    location,
		ImageURLs:   images,
	}
}

// ParseLotDetails extracts a single rendered lot detail page for either
// auction platform.
func ParseLotDetails(html, pageURL string, platform models.Platform) (*models.Listing, error) {
	rules := invaluableRules
	if platform == models.PlatformLiveAuctioneers {
		rules = liveAuctioneersRules
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s lot HTML: %w", platform, err)
	}

	title := strings.TrimSpace(doc.Find("h1, .lot-title, [data-testid='lot-title']").First().Text())
	description := strings.TrimSpace(doc.Find(".lot-description, .description, #description, [data-testid='description']").First().Text())
	price, currency := ExtractPrice(doc.Find(".sold-price, .current-bid, .estimate, .price, [data-testid='price']").First().Text())
	seller := strings.TrimSpace(doc.Find(".auction-house, .house-name, [data-testid='auction-house']").First().Text())

	var images []string
	doc.Find(".lot-image img, .gallery img, [data-testid='lot-image'] img").Each(func(i int, s *goquery.Selection) {
		if len(images) >= 5 {
			return
		}
		src := s.AttrOr("src", "")
		if src == "" {
			src = s.AttrOr("data-src", "")
		}
		if src == "" {
			return
		}
		src = resolveURL(rules.baseURL, src)
		for _, existing := range images {
			if existing == src {
				return
			}
		}
		images = append(images, src)
	})

	var raw map[string]any
	if dims := extractDimensions(description); dims != "" {
		raw = map[string]any{"dimensions": dims}
	}

	return &models.Listing{
		Title:       title,
		Description: description,
		Platform:    platform,
		SourceURL:   pageURL,
		SourceID:    rules.extractID(pageURL),
		Price:       price,
		Currency:    currency,
		SellerName:  seller,
		ImageURLs:   images,
		RawData:     raw,
	}, nil
}

var dimensionsRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[xX×]\s*(\d+(?:\.\d+)?)\s*(in|cm|inches)`)

func extractDimensions(description string) string {
	m := dimensionsRe.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s x %s %s", m[1], m[2], m[3])
}
