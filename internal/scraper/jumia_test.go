package scraper

import (
	"testing"

	"mspro-labs/price-scout/internal/config"
)

var jumiaSite = config.SiteConfig{
	Name:      "jumia",
	BaseURL:   "https://www.jumia.co.ug",
	SearchURL: "https://www.jumia.co.ug/catalog/?q={query}",
	Currency:  "UGX",
	Enabled:   true,
}

// TestParseJumiaListings drives the parser with static HTML covering the
// happy path plus the two silent-drop cases (no price, no name).
func TestParseJumiaListings(t *testing.T) {
	const sampleHTML = `
<html><body>
  <article class="prd">
    <h3>Samsung Galaxy A24 128GB</h3>
    <a href="/samsung-galaxy-a24.html">view</a>
    <div class="prc">UGX 1,234.56</div>
    <div class="prc-old">UGX 1,500.00</div>
    <img data-src="/img/a24.jpg">
    <div class="stars">4.2 out of 5</div>
    <div class="rev">(318)</div>
  </article>

  <article class="prd">
    <h3>Mystery Phone</h3>
    <a href="/mystery.html">view</a>
    <div class="prc">Call for price</div>
  </article>

  <article class="prd">
    <a href="/nameless.html">view</a>
    <div class="prc">UGX 99</div>
  </article>
</body></html>`

	listings, err := parseJumiaListings(sampleHTML, jumiaSite, "Uganda")
	if err != nil {
		t.Fatalf("parseJumiaListings failed: %v", err)
	}

	// The no-price and no-name containers are dropped silently.
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}

	l := listings[0]
	if l.Name != "Samsung Galaxy A24 128GB" {
		t.Errorf("Name = %q", l.Name)
	}
	if l.Price != 1234.56 {
		t.Errorf("Price = %v; want 1234.56", l.Price)
	}
	if l.ProductURL != "https://www.jumia.co.ug/samsung-galaxy-a24.html" {
		t.Errorf("ProductURL not resolved: %q", l.ProductURL)
	}
	if l.OriginalPrice == nil || *l.OriginalPrice != 1500 {
		t.Errorf("OriginalPrice = %v; want 1500", l.OriginalPrice)
	}
	if l.ImageURL != "https://www.jumia.co.ug/img/a24.jpg" {
		t.Errorf("ImageURL = %q", l.ImageURL)
	}
	if l.Rating == nil || *l.Rating != 4.2 {
		t.Errorf("Rating = %v; want 4.2", l.Rating)
	}
	if l.ReviewCount == nil || *l.ReviewCount != 318 {
		t.Errorf("ReviewCount = %v; want 318", l.ReviewCount)
	}
	if l.Currency != "UGX" || l.StoreName != "jumia" || l.Region != "Uganda" {
		t.Errorf("store fields wrong: %q %q %q", l.Currency, l.StoreName, l.Region)
	}
	if l.ID == "" {
		t.Error("listing ID not generated")
	}
	if !l.Availability {
		t.Error("search listings should default to available")
	}
}

// The container and field selectors are alternatives: a page built from the
// secondary markup shape must still parse.
func TestParseJumiaAlternativeSelectors(t *testing.T) {
	const sampleHTML = `
<html><body>
  <div class="card">
    <div class="name">Anker Soundcore Life Q20</div>
    <a href="https://www.jumia.co.ug/anker-q20.html">view</a>
    <span class="price">UGX 210,000</span>
  </div>
</body></html>`

	listings, err := parseJumiaListings(sampleHTML, jumiaSite, "Uganda")
	if err != nil {
		t.Fatalf("parseJumiaListings failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].Name != "Anker Soundcore Life Q20" || listings[0].Price != 210000 {
		t.Errorf("got %q at %v", listings[0].Name, listings[0].Price)
	}
}

func TestSearchURL(t *testing.T) {
	got := searchURL(jumiaSite, "wireless headphones")
	want := "https://www.jumia.co.ug/catalog/?q=wireless+headphones"
	if got != want {
		t.Errorf("searchURL = %q; want %q", got, want)
	}
}
