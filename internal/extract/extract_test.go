package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"UGX 85,000", 85000, true},
		{"19.99", 19.99, true},
		{"From $12", 12, true},
		{"Call for price", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := Price(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Price(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"4.5 out of 5 stars", 4.5, true},
		{"9.7", 5, true}, // clamped
		{"0", 0, true},
		{"no rating", 0, false},
	}
	for _, tt := range tests {
		got, ok := Rating(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Rating(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestReviewCount(t *testing.T) {
	if got, ok := ReviewCount("1,024 reviews"); !ok || got != 1024 {
		t.Errorf("ReviewCount = %d, %v; want 1024, true", got, ok)
	}
	if _, ok := ReviewCount("no reviews yet"); ok {
		t.Error("expected no count for text without digits")
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  Wireless \n\t Headphones   Pro  ")
	if got != "Wireless Headphones Pro" {
		t.Errorf("CleanText = %q", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://www.jumia.co.ug", "/phone-x.html", "https://www.jumia.co.ug/phone-x.html"},
		{"https://www.jumia.co.ug", "https://cdn.jumia.is/img.jpg", "https://cdn.jumia.is/img.jpg"},
		{"https://www.jumia.co.ug", "", ""},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.href); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q; want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestFirstTextUsesSelectorOrder(t *testing.T) {
	const html = `<div><span class="b">second</span><h3></h3><div class="name">first</div></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	// h3 matches but is empty, so the next alternative wins.
	got := FirstText(doc.Selection, "h3", "div.name", "span.b")
	if got != "first" {
		t.Errorf("FirstText = %q; want \"first\"", got)
	}
}

func TestFirstAttrFallsBackToDataSrc(t *testing.T) {
	const html = `<div><img data-src="/lazy.jpg"></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	got := FirstAttr(doc.Selection, []string{"img"}, "src", "data-src")
	if got != "/lazy.jpg" {
		t.Errorf("FirstAttr = %q; want \"/lazy.jpg\"", got)
	}
}
