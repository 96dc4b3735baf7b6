package parser

import (
	"testing"

	"artwork-tracker/models"
)

const ebaySearchHTML = `
<ul>
  <li class="s-item">
    <div class="s-item__title">Shop on eBay</div>
    <a class="s-item__link" href="https://www.ebay.com/itm/000000000"></a>
  </li>
  <li class="s-item">
    <div class="s-item__title">Dan Brown Trompe L'oeil Oil Painting</div>
    <a class="s-item__link" href="https://www.ebay.com/itm/123456789?hash=abc&var=0"></a>
    <span class="s-item__price">$1,250.00</span>
    <span class="s-item__location">From Madison, Connecticut</span>
    <div class="s-item__subtitle">Signed, vintage postcards rack painting</div>
    <img class="s-item__image-img" src="https://i.ebayimg.com/images/g/abc/s-l225.jpg">
  </li>
  <li class="s-item">
    <div class="s-item__title">Broken card without link</div>
  </li>
</ul>`

func TestParseEbaySearch(t *testing.T) {
	listings, err := ParseEbaySearch(ebaySearchHTML)
	if err != nil {
		t.Fatalf("ParseEbaySearch() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1 (placeholder and broken cards skipped)", len(listings))
	}

	l := listings[0]
	if l.Title != "Dan Brown Trompe L'oeil Oil Painting" {
		t.Errorf("Title = %q", l.Title)
	}
	if l.SourceURL != "https://www.ebay.com/itm/123456789" {
		t.Errorf("SourceURL = %q, want tracking params stripped", l.SourceURL)
	}
	if l.SourceID != "123456789" {
		t.Errorf("SourceID = %q, want 123456789", l.SourceID)
	}
	if l.Price != 1250.0 {
		t.Errorf("Price = %v, want 1250", l.Price)
	}
	if l.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", l.Currency)
	}
	if l.Location != "Madison, Connecticut" {
		t.Errorf("Location = %q, want From prefix stripped", l.Location)
	}
	if l.Platform != models.PlatformEbay {
		t.Errorf("Platform = %q", l.Platform)
	}
	if len(l.ImageURLs) != 1 || l.ImageURLs[0] != "https://i.ebayimg.com/images/g/abc/s-l500.jpg" {
		t.Errorf("ImageURLs = %v, want thumbnail upgraded to s-l500", l.ImageURLs)
	}
	if l.Description != "Signed, vintage postcards rack painting" {
		t.Errorf("Description = %q", l.Description)
	}
}

const ebayDetailHTML = `
<html><body>
  <h1 class="x-item-title__mainTitle">Dan Brown "Six Fives" Currency Painting</h1>
  <div data-testid="x-price-primary">US $4,500.00</div>
  <div data-testid="item-description">
    Original oil on panel by Connecticut artist Dan Brown (1949-2022).
    Trompe l'oeil paper currency, exhibited at Susan Powell Fine Art.
  </div>
  <div data-testid="str-title">greenwich-gallery</div>
  <div data-testid="ux-image-carousel">
    <img src="https://i.ebayimg.com/images/g/one/s-l64.jpg">
    <img src="https://i.ebayimg.com/images/g/two/s-l64.jpg">
    <img src="https://i.ebayimg.com/images/g/one/s-l64.jpg">
  </div>
</body></html>`

func TestParseEbayListing(t *testing.T) {
	url := "https://www.ebay.com/itm/987654321"
	l, err := ParseEbayListing(ebayDetailHTML, url)
	if err != nil {
		t.Fatalf("ParseEbayListing() error = %v", err)
	}

	if l.Title != `Dan Brown "Six Fives" Currency Painting` {
		t.Errorf("Title = %q", l.Title)
	}
	if l.SourceID != "987654321" {
		t.Errorf("SourceID = %q", l.SourceID)
	}
	if l.Price != 4500.0 {
		t.Errorf("Price = %v, want 4500", l.Price)
	}
	if l.SellerName != "greenwich-gallery" {
		t.Errorf("SellerName = %q", l.SellerName)
	}
	if len(l.ImageURLs) != 2 {
		t.Errorf("got %d images, want 2 (duplicates dropped)", len(l.ImageURLs))
	}
	if len(l.ImageURLs) > 0 && l.ImageURLs[0] != "https://i.ebayimg.com/images/g/one/s-l1600.jpg" {
		t.Errorf("ImageURLs[0] = %q, want upgraded to s-l1600", l.ImageURLs[0])
	}
	if l.Description == "" {
		t.Error("Description is empty")
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		value    float64
		currency string
	}{
		{"dollars with comma", "$1,250.00", 1250.0, "USD"},
		{"prefixed text", "US $450.00 Buy It Now", 450.0, "USD"},
		{"pounds", "£300", 300.0, "GBP"},
		{"euros", "€2,000.50", 2000.50, "EUR"},
		{"bare number", "1500", 1500.0, "USD"},
		{"estimate range keeps first", "Est. $300 - $500", 300.0, "USD"},
		{"no amount", "Price on request", 0, "USD"},
		{"empty", "", 0, "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, currency := ExtractPrice(tt.input)
			if value != tt.value || currency != tt.currency {
				t.Errorf("ExtractPrice(%q) = (%v, %q), want (%v, %q)",
					tt.input, value, currency, tt.value, tt.currency)
			}
		})
	}
}
