package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/extract"
	"mspro-labs/price-scout/internal/models"
)

// Amazon scrapes Amazon search results. The result grid is filled in by
// client-side script, so every fetch goes through the rendered strategy.
type Amazon struct {
	render *renderer
}

// Search renders the search results page in a headless browser session
// and extracts listings from the settled markup.
func (a *Amazon) Search(ctx context.Context, query string, site config.SiteConfig, region, category string, limit int) ([]models.Listing, error) {
	html, err := a.render.render(searchURL(site, query))
	if err != nil {
		return nil, err
	}

	listings, err := parseAmazonListings(html, site, region)
	if err != nil {
		return nil, err
	}
	logger.Printf("%s: extracted %d listings for %q", site.Name, len(listings), query)
	if len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

func parseAmazonListings(html string, site config.SiteConfig, region string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s results: %w", site.Name, err)
	}

	var listings []models.Listing
	containers(doc, "div[data-component-type='s-search-result']", "div.s-result-item", "div.sg-col-inner").
		Each(func(_ int, s *goquery.Selection) {
			name := extract.FirstText(s, "h2", "span.a-size-medium", "a.a-link-normal")
			if name == "" {
				return
			}

			href, _ := s.Find("a[href]").First().Attr("href")
			if href == "" {
				return
			}
			productURL := extract.AbsoluteURL(site.BaseURL, href)

			// Sponsored and non-product links
			if strings.Contains(productURL, "/gp/") || strings.Contains(productURL, "/ref=") {
				return
			}

			price, ok := extract.Price(extract.FirstText(s, "span.a-price-whole", "span.a-price", "span.a-offscreen"))
			if !ok {
				return
			}

			listing := newListing(name, price, productURL, site, region)

			if orig, ok := extract.Price(extract.FirstText(s, "span.a-text-strike", "span.a-price.a-text-price")); ok {
				listing.OriginalPrice = &orig
			}
			if img := extract.FirstAttr(s, []string{"img.s-image", "img[data-image-latency]"}, "src", "data-src"); img != "" {
				listing.ImageURL = extract.AbsoluteURL(site.BaseURL, img)
			}
			if rating, ok := extract.Rating(extract.FirstText(s, "span.a-icon-alt", "i.a-icon-star")); ok {
				listing.Rating = &rating
			}
			if count, ok := extract.ReviewCount(extract.FirstText(s, "span.a-size-base", "a.a-link-normal")); ok {
				listing.ReviewCount = &count
			}
			if brand := extract.FirstText(s, "span.a-size-base-plus", "div.a-row.a-size-base.a-color-secondary"); brand != "" {
				listing.Brand = brand
			}

			listings = append(listings, listing)
		})

	return listings, nil
}

// ProductDetails renders a single product page.
func (a *Amazon) ProductDetails(ctx context.Context, productURL string) (*models.Listing, error) {
	html, err := a.render.render(productURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	root := doc.Selection
	name := extract.FirstText(root, "span#productTitle", "h1.a-size-large")
	price, ok := extract.Price(extract.FirstText(root, "span.a-price-whole", "span.a-offscreen", "span.a-price"))
	if name == "" || !ok {
		return nil, nil
	}

	listing := models.Listing{
		Name:        name,
		Price:       price,
		ProductURL:  productURL,
		Description: extract.FirstText(root, "div#productDescription", "div.a-expander-content", "div#feature-bullets"),
		Brand:       extract.FirstText(root, "a#bylineInfo"),
		Category:    extract.FirstText(root, "nav.a-breadcrumb", "div#wayfinding-breadcrumbs"),
	}

	if avail := extract.FirstText(root, "div#availability", "span.a-size-medium.a-color-success"); avail != "" {
		listing.Availability = strings.Contains(strings.ToLower(avail), "in stock")
	}
	return &listing, nil
}
