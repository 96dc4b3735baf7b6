package parser

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"artwork-tracker/models"

	"github.com/PuerkitoBio/goquery"
)

var ebayItemIDRe = regexp.MustCompile(`/itm/(\d+)`)
var ebayThumbRe = regexp.MustCompile(`s-l\d+`)

// ParseEbaySearch extracts listings from an eBay search results page.
// Malformed result cards are skipped individually; only a document that
// cannot be parsed at all is an error.
func ParseEbaySearch(html string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse eBay HTML: %w", err)
	}

	var listings []models.Listing
	doc.Find(".s-item").Each(func(i int, s *goquery.Selection) {
		listing := parseEbaySearchItem(s)
		if listing != nil {
			listings = append(listings, *listing)
		}
	})

	return listings, nil
}

// parseEbaySearchItem extracts one search result card. Returns nil for
// placeholder cards and cards without a canonical listing URL.
func parseEbaySearchItem(s *goquery.Selection) *models.Listing {
	title := strings.TrimSpace(s.Find(".s-item__title").First().Text())
	if title == "" || strings.EqualFold(title, "shop on ebay") {
		return nil
	}

	url := s.Find(".s-item__link").First().AttrOr("href", "")
	if url == "" {
		return nil
	}
	// Strip tracking parameters so the URL dedups across queries.
	if idx := strings.Index(url, "?"); idx != -1 {
		url = url[:idx]
	}

	itemID := ""
	if m := ebayItemIDRe.FindStringSubmatch(url); m != nil {
		itemID = m[1]
	}

	price, currency := ExtractPrice(s.Find(".s-item__price").First().Text())

	location := strings.TrimSpace(s.Find(".s-item__location").First().Text())
	if strings.HasPrefix(strings.ToLower(location), "from ") {
		location = location[5:]
	}

	var imageURLs []string
	img := s.Find(".s-item__image-img").First()
	imgURL := img.AttrOr("src", "")
	if imgURL == "" {
		imgURL = img.AttrOr("data-src", "")
	}
	if imgURL != "" {
		if strings.Contains(imgURL, "s-l") {
			imgURL = ebayThumbRe.ReplaceAllString(imgURL, "s-l500")
		}
		imageURLs = append(imageURLs, imgURL)
	}

	description := strings.TrimSpace(s.Find(".s-item__subtitle").First().Text())

	return &models.Listing{
		Title:       title,
		Description: description,
		Platform:    models.PlatformEbay,
		SourceURL:   url,
		SourceID:    itemID,
		Price:       price,
		Currency:    currency,
		Location:    location,
		ImageURLs:   imageURLs,
	}
}

// ParseEbayListing extracts the full detail page of one eBay item.
func ParseEbayListing(html, url string) (*models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse eBay listing HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1.x-item-title__mainTitle").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("[data-testid='x-item-title']").First().Text())
	}
	if title == "" {
		log.Printf("Warning: No title found on eBay listing page: %s\n", url)
		title = "Unknown"
	}

	itemID := ""
	if m := ebayItemIDRe.FindStringSubmatch(url); m != nil {
		itemID = m[1]
	}

	priceText := doc.Find("[data-testid='x-price-primary']").First().Text()
	if priceText == "" {
		priceText = doc.Find(".x-price-primary").First().Text()
	}
	price, currency := ExtractPrice(priceText)

	description := ""
	desc := doc.Find("[data-testid='item-description']").First()
	if desc.Length() == 0 {
		desc = doc.Find("#viTabs_0_is").First()
	}
	if desc.Length() > 0 {
		description = strings.Join(strings.Fields(desc.Text()), " ")
		if len(description) > 2000 {
			description = description[:2000]
		}
	}

	location := ""
	doc.Find(".ux-labels-values__labels").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.Text()), "location") {
			location = strings.TrimSpace(s.SiblingsFiltered(".ux-labels-values__values").First().Text())
			return false
		}
		return true
	})

	sellerName := strings.TrimSpace(doc.Find("[data-testid='str-title']").First().Text())
	if sellerName == "" {
		sellerName = strings.TrimSpace(doc.Find(".x-sellercard-atf__info__about-seller a").First().Text())
	}

	var imageURLs []string
	doc.Find("[data-testid='ux-image-carousel'] img").Each(func(i int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			src = s.AttrOr("data-src", "")
		}
		if src == "" {
			return
		}
		if strings.Contains(src, "s-l") {
			src = ebayThumbRe.ReplaceAllString(src, "s-l1600")
		}
		for _, existing := range imageURLs {
			if existing == src {
				return
			}
		}
		imageURLs = append(imageURLs, src)
	})
	if len(imageURLs) == 0 {
		doc.Find(".ux-image-carousel-item img").Each(func(i int, s *goquery.Selection) {
			src := s.AttrOr("src", "")
			if src == "" {
				src = s.AttrOr("data-zoom-src", "")
			}
			if src != "" {
				imageURLs = append(imageURLs, src)
			}
		})
	}

	return &models.Listing{
		Title:       title,
		Description: description,
		Platform:    models.PlatformEbay,
		SourceURL:   url,
		SourceID:    itemID,
		Price:       price,
		Currency:    currency,
		SellerName:  sellerName,
		Location:    location,
		ImageURLs:   imageURLs,
	}, nil
}
