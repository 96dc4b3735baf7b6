package scraper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"artwork-tracker/models"
)

// eBay Browse API endpoints.
const (
	ebayProdAuthURL   = "https://api.ebay.com/identity/v1/oauth2/token"
	ebayProdBrowseURL = "https://api.ebay.com/buy/browse/v1/item_summary/search"
	ebayProdItemURL   = "https://api.ebay.com/buy/browse/v1/item/"
)

// EbayAPIScraper uses eBay's official Browse API. Far more reliable than
// scraping HTML: no blocking, structured data, and the free tier allows
// 5,000 calls per day.
type EbayAPIScraper struct {
	clientID     string
	clientSecret string
	delay        time.Duration
	client       *http.Client

	accessToken  string
	tokenExpires time.Time
}

// NewEbayAPIScraper creates a Browse API scraper with the given
// developer credentials.
func NewEbayAPIScraper(clientID, clientSecret string, delay time.Duration) *EbayAPIScraper {
	return &EbayAPIScraper{
		clientID:     clientID,
		clientSecret: clientSecret,
		delay:        delay,
		client:       &http.Client{Timeout: requestTimeout},
	}
}

func (e *EbayAPIScraper) Platform() models.Platform { return models.PlatformEbay }

// BuildSearchQueries returns queries tuned for the API. The API has no
// negative-keyword syntax; the scorer handles novelist hits downstream.
func (e *EbayAPIScraper) BuildSearchQueries() []string {
	return []string{
		"Dan Brown trompe l'oeil",
		"Dan Brown artist painting",
		"Dan Brown Connecticut artist",
		"Dan Brown Susan Powell",
		"Daniel Brown trompe l'oeil",
		"Dan Brown rack painting",
		"Dan Brown vintage postcards painting",
		"Dan Brown realist painting",
		"Dan Brown original oil painting",
	}
}

// getAccessToken obtains an OAuth token via the client-credentials flow,
// caching it until five minutes before expiry.
func (e *EbayAPIScraper) getAccessToken(ctx context.Context) (string, error) {
	if e.accessToken != "" && time.Now().Before(e.tokenExpires.Add(-5*time.Minute)) {
		return e.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "https://api.ebay.com/oauth/api_scope")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ebayProdAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(e.clientID + ":" + e.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token request returned %d: %s", resp.StatusCode, body)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.ExpiresIn == 0 {
		token.ExpiresIn = 7200
	}

	e.accessToken = token.AccessToken
	e.tokenExpires = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	log.Printf("eBay OAuth token obtained: expires_in=%ds\n", token.ExpiresIn)

	return e.accessToken, nil
}

// ebayItem mirrors the Browse API item summary fields this scraper reads.
type ebayItem struct {
	ItemID     string `json:"itemId"`
	Title      string `json:"title"`
	ItemWebURL string `json:"itemWebUrl"`
	Price      struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	ItemLocation struct {
		City            string `json:"city"`
		StateOrProvince string `json:"stateOrProvince"`
		Country         string `json:"country"`
	} `json:"itemLocation"`
	Seller struct {
		Username string `json:"username"`
	} `json:"seller"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	AdditionalImages []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"additionalImages"`
	ItemCreationDate string `json:"itemCreationDate"`
	ItemEndDate      string `json:"itemEndDate"`
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
	Condition        string `json:"condition"`
}

// Search queries the Browse API. API errors are logged and yield an
// empty list except for auth failures, which mean the scraper itself is
// misconfigured.
func (e *EbayAPIScraper) Search(ctx context.Context, query string) ([]models.Listing, error) {
	token, err := e.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("ebay api auth: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("category_ids", "550")
	params.Set("limit", "50")
	params.Set("sort", "newlyListed")
	params.Set("fieldgroups", "MATCHING_ITEMS,EXTENDED")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ebayProdBrowseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")

	log.Printf("Searching eBay API: query=%q\n", query)

	resp, err := e.client.Do(req)
	if err != nil {
		log.Printf("Error: eBay API request failed: query=%q err=%v\n", query, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Error: eBay API returned status %d: query=%q\n", resp.StatusCode, query)
		return nil, nil
	}

	var result struct {
		ItemSummaries []json.RawMessage `json:"itemSummaries"`
		Total         int               `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Error: failed to decode eBay API response: query=%q err=%v\n", query, err)
		return nil, nil
	}

	var listings []models.Listing
	for _, raw := range result.ItemSummaries {
		listing, err := parseEbayAPIItem(raw)
		if err != nil {
			log.Printf("Warning: failed to parse eBay API item: %v\n", err)
			continue
		}
		if listing != nil {
			listings = append(listings, *listing)
		}
	}

	log.Printf("eBay API search complete: query=%q results=%d total_available=%d\n",
		query, len(listings), result.Total)
	return listings, nil
}

// parseEbayAPIItem converts one raw item summary into a Listing. The
// original payload is kept in RawData for audit.
func parseEbayAPIItem(raw json.RawMessage) (*models.Listing, error) {
	var item ebayItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	if item.Title == "" {
		return nil, nil
	}

	itemURL := item.ItemWebURL
	if itemURL == "" {
		if item.ItemID == "" {
			return nil, nil
		}
		itemURL = "https://www.ebay.com/itm/" + item.ItemID
	}

	var price float64
	fmt.Sscanf(item.Price.Value, "%f", &price)
	currency := item.Price.Currency
	if currency == "" {
		currency = "USD"
	}

	var locationParts []string
	for _, part := range []string{item.ItemLocation.City, item.ItemLocation.StateOrProvince, item.ItemLocation.Country} {
		if part != "" {
			locationParts = append(locationParts, part)
		}
	}

	var imageURLs []string
	if item.Image.ImageURL != "" {
		imageURLs = append(imageURLs, item.Image.ImageURL)
	}
	for i, img := range item.AdditionalImages {
		if i >= 5 {
			break
		}
		if img.ImageURL != "" && img.ImageURL != item.Image.ImageURL {
			imageURLs = append(imageURLs, img.ImageURL)
		}
	}

	description := item.ShortDescription
	if item.Condition != "" {
		if description != "" {
			description = item.Condition + ". " + description
		} else {
			description = item.Condition
		}
	}

	var rawData map[string]any
	if err := json.Unmarshal(raw, &rawData); err != nil {
		rawData = nil
	}

	return &models.Listing{
		Title:       item.Title,
		Description: description,
		Platform:    models.PlatformEbay,
		SourceURL:   itemURL,
		SourceID:    item.ItemID,
		Price:       price,
		Currency:    currency,
		SellerName:  item.Seller.Username,
		SellerID:    item.Seller.Username,
		Location:    strings.Join(locationParts, ", "),
		ImageURLs:   imageURLs,
		DateListing: parseISOTime(item.ItemCreationDate),
		DateEnding:  parseISOTime(item.ItemEndDate),
		RawData:     rawData,
	}, nil
}

func parseISOTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// GetListingDetails fetches one item through the getItem endpoint, which
// carries the full description.
func (e *EbayAPIScraper) GetListingDetails(ctx context.Context, listingURL string) (*models.Listing, error) {
	itemID := ""
	if idx := strings.Index(listingURL, "/itm/"); idx != -1 {
		itemID = listingURL[idx+len("/itm/"):]
		itemID = strings.SplitN(itemID, "?", 2)[0]
		itemID = strings.SplitN(itemID, "/", 2)[0]
	}
	if itemID == "" {
		log.Printf("Warning: could not extract item ID from URL: %s\n", listingURL)
		return nil, nil
	}

	token, err := e.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("ebay api auth: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ebayProdItemURL+itemID, nil)
	if err != nil {
		return nil, fmt.Errorf("build item request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")

	resp, err := e.client.Do(req)
	if err != nil {
		log.Printf("Error: eBay API item fetch failed: item=%s err=%v\n", itemID, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Error: eBay API item fetch returned status %d: item=%s\n", resp.StatusCode, itemID)
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read item response: %w", err)
	}

	listing, err := parseEbayAPIItem(raw)
	if err != nil || listing == nil {
		return nil, err
	}

	// getItem carries the full description, which the summary lacks.
	var item ebayItem
	if json.Unmarshal(raw, &item) == nil && item.Description != "" {
		description := item.Description
		if len(description) > 2000 {
			description = description[:2000]
		}
		listing.Description = description
	}

	return listing, nil
}

func (e *EbayAPIScraper) SearchAll(ctx context.Context) ([]models.Listing, error) {
	return searchAll(ctx, e, e.delay)
}

// Close releases pooled connections.
func (e *EbayAPIScraper) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
