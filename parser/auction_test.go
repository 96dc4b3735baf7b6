package parser

import (
	"strings"
	"testing"

	"artwork-tracker/models"
)

const invaluableCardsHTML = `
<div>
  <div class="lot-card">
    <h2>Dan Brown (American, b. 1949) Six Fives</h2>
    <a href="/auction-lot/dan-brown-six-fives-323-c-ab12cd34">Lot</a>
    <span class="price">$2,400</span>
    <p>Trompe l'oeil oil on panel</p>
    <span class="auction-house">Shannon's Fine Art</span>
    <img src="/images/lots/six-fives.jpg">
  </div>
  <div class="lot-card">
    <span>card without any link</span>
  </div>
</div>`

func TestParseInvaluableSearchCards(t *testing.T) {
	listings, err := ParseInvaluableSearch(invaluableCardsHTML)
	if err != nil {
		t.Fatalf("ParseInvaluableSearch() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}

	l := listings[0]
	if !strings.HasPrefix(l.Title, "Dan Brown") {
		t.Errorf("Title = %q", l.Title)
	}
	if l.SourceURL != "https://www.invaluable.com/auction-lot/dan-brown-six-fives-323-c-ab12cd34" {
		t.Errorf("SourceURL = %q, want relative href resolved", l.SourceURL)
	}
	if l.SourceID != "ab12cd34" {
		t.Errorf("SourceID = %q, want lot ID suffix", l.SourceID)
	}
	if l.Price != 2400.0 {
		t.Errorf("Price = %v, want 2400", l.Price)
	}
	if l.SellerName != "Shannon's Fine Art" {
		t.Errorf("SellerName = %q", l.SellerName)
	}
	if l.Platform != models.PlatformInvaluable {
		t.Errorf("Platform = %q", l.Platform)
	}
}

const invaluableLinksOnlyHTML = `
<div>
  <a href="/auction-lot/dan-brown-rack-painting-1-c-xyz789">Dan Brown rack painting</a>
  <a href="/auction-lot/dan-brown-rack-painting-1-c-xyz789">Dan Brown rack painting</a>
  <a href="/about">About us</a>
</div>`

func TestParseInvaluableSearchLinkFallback(t *testing.T) {
	listings, err := ParseInvaluableSearch(invaluableLinksOnlyHTML)
	if err != nil {
		t.Fatalf("ParseInvaluableSearch() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1 (duplicate link dropped)", len(listings))
	}
	if listings[0].SourceID != "xyz789" {
		t.Errorf("SourceID = %q", listings[0].SourceID)
	}
}

const liveAuctioneersHTML = `
<div>
  <div data-testid="lot-card">
    <h3>Dan Brown Connecticut Painter Still Life</h3>
    <a href="/item/98765432_dan-brown-still-life">Lot 42</a>
    <span class="current-bid">$850</span>
    <span class="house-name">Nadeau's</span>
    <span class="location">Windsor, CT</span>
    <img src="https://p1.liveauctioneers.com/placeholder.jpg">
  </div>
</div>`

func TestParseLiveAuctioneersSearch(t *testing.T) {
	listings, err := ParseLiveAuctioneersSearch(liveAuctioneersHTML)
	if err != nil {
		t.Fatalf("ParseLiveAuctioneersSearch() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}

	l := listings[0]
	if l.SourceID != "98765432" {
		t.Errorf("SourceID = %q, want numeric item ID", l.SourceID)
	}
	if l.Price != 850.0 {
		t.Errorf("Price = %v, want 850", l.Price)
	}
	if l.Location != "Windsor, CT" {
		t.Errorf("Location = %q", l.Location)
	}
	if len(l.ImageURLs) != 0 {
		t.Errorf("ImageURLs = %v, want placeholder image skipped", l.ImageURLs)
	}
	if l.Platform != models.PlatformLiveAuctioneers {
		t.Errorf("Platform = %q", l.Platform)
	}
}

const lotDetailHTML = `
<html><body>
  <h1>Dan Brown Trompe L'oeil Letter Rack</h1>
  <div class="lot-description">Oil on panel, 16 x 20 in, signed lower right.</div>
  <span class="sold-price">$3,100</span>
  <div class="house-name">Shannon's</div>
  <div class="lot-image">
    <img src="/photos/rack-1.jpg">
    <img src="/photos/rack-2.jpg">
  </div>
</body></html>`

func TestParseLotDetails(t *testing.T) {
	url := "https://www.invaluable.com/auction-lot/dan-brown-letter-rack-12-c-deadbeef"
	l, err := ParseLotDetails(lotDetailHTML, url, models.PlatformInvaluable)
	if err != nil {
		t.Fatalf("ParseLotDetails() error = %v", err)
	}

	if l.Title != "Dan Brown Trompe L'oeil Letter Rack" {
		t.Errorf("Title = %q", l.Title)
	}
	if l.Price != 3100.0 {
		t.Errorf("Price = %v", l.Price)
	}
	if l.SourceID != "deadbeef" {
		t.Errorf("SourceID = %q", l.SourceID)
	}
	if len(l.ImageURLs) != 2 {
		t.Errorf("got %d images, want 2", len(l.ImageURLs))
	}
	if l.RawData == nil || l.RawData["dimensions"] != "16 x 20 in" {
		t.Errorf("RawData = %v, want dimensions extracted", l.RawData)
	}
}

func TestIsBlockedPage(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		blocked bool
	}{
		{"captcha", "<html>Please solve this CAPTCHA to continue</html>", true},
		{"access denied", "<html><h1>Access Denied</h1></html>", true},
		{"normal page", "<html><div class='lot-card'>Dan Brown</div></html>", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlockedPage(tt.html); got != tt.blocked {
				t.Errorf("IsBlockedPage() = %v, want %v", got, tt.blocked)
			}
		})
	}
}

const artnetAuthorHTML = `
<html><div class="artist-header">Dan Brown is an American author and novelist
best known for the Da Vinci Code.</div></html>`

const artnetPainterHTML = `
<html><div class="artist-header">Dan Brown (American, 1949-2022), trompe l'oeil
painter from Madison, Connecticut.</div></html>`

func TestIsArtnetAuthorPage(t *testing.T) {
	if !IsArtnetAuthorPage(artnetAuthorHTML) {
		t.Error("author page not detected")
	}
	if IsArtnetAuthorPage(artnetPainterHTML) {
		t.Error("painter page misdetected as author")
	}
	if IsArtnetAuthorPage("<html><p>no header</p></html>") {
		t.Error("page without artist header misdetected")
	}
}

const artnetAuctionHTML = `
<div>
  <div class="auction-result">
    <h2>Six Fives</h2>
    <a href="/artists/dan-brown-2/six-fives-lot-1001">view</a>
    <span class="price">$4,000</span>
    <p>Oil on panel, trompe l'oeil</p>
    <span class="date">03/15/2021</span>
    <img src="/images/six-fives.jpg">
  </div>
  <div class="auction-result"><span>no title, skipped</span></div>
</div>`

func TestParseArtnetAuctionResults(t *testing.T) {
	listings, err := ParseArtnetAuctionResults(artnetAuctionHTML, "dan-brown-2", "https://www.artnet.com")
	if err != nil {
		t.Fatalf("ParseArtnetAuctionResults() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}

	l := listings[0]
	if l.Title != "Six Fives" {
		t.Errorf("Title = %q", l.Title)
	}
	if l.SourceURL != "https://www.artnet.com/artists/dan-brown-2/six-fives-lot-1001" {
		t.Errorf("SourceURL = %q", l.SourceURL)
	}
	if l.Price != 4000.0 {
		t.Errorf("Price = %v", l.Price)
	}
	if l.DateListing == nil {
		t.Error("DateListing not parsed")
	} else if l.DateListing.Year() != 2021 {
		t.Errorf("DateListing year = %d, want 2021", l.DateListing.Year())
	}
	if l.RawData["artist_slug"] != "dan-brown-2" {
		t.Errorf("RawData = %v", l.RawData)
	}
}
