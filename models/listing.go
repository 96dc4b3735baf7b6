package models

import "time"

// Platform identifies which marketplace a listing was scraped from.
type Platform string

const (
	PlatformEbay            Platform = "ebay"
	PlatformArtnet          Platform = "artnet"
	PlatformInvaluable      Platform = "invaluable"
	PlatformLiveAuctioneers Platform = "liveauctioneers"
)

// Listing is the normalized record every scraper produces, regardless of
// the platform's native shape. SourceURL is the natural key for
// deduplication within a run; scrapers that cannot establish a canonical
// URL must drop the item instead of emitting a degenerate record.
type Listing struct {
	Title       string
	Description string
	Platform    Platform
	SourceURL   string
	SourceID    string // platform-native ID, preferred dedup key when set

	Price    float64 // 0 means unknown
	Currency string  // defaults to "USD"

	SellerName string
	SellerID   string
	Location   string

	ImageURLs []string // first entry is the primary image candidate

	DateListing *time.Time
	DateEnding  *time.Time

	// RawData keeps the original source payload for debugging. It is
	// stored as-is and never interpreted downstream.
	RawData map[string]any
}
