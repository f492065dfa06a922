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

// Jumia scrapes Jumia marketplaces. The site serves complete markup, so
// the static fetch strategy is enough.
type Jumia struct {
	fetch *fetcher
}

// Search fetches the search results page and extracts listings.
func (j *Jumia) Search(ctx context.Context, query string, site config.SiteConfig, region, category string, limit int) ([]models.Listing, error) {
	html, err := j.fetch.get(ctx, searchURL(site, query))
	if err != nil {
		return nil, err
	}

	listings, err := parseJumiaListings(html, site, region)
	if err != nil {
		return nil, err
	}
	logger.Printf("%s: extracted %d listings for %q", site.Name, len(listings), query)
	if len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

func parseJumiaListings(html string, site config.SiteConfig, region string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s results: %w", site.Name, err)
	}

	var listings []models.Listing
	containers(doc, "article.prd", "div.card", "div[data-qa='product-card']").
		Each(func(_ int, s *goquery.Selection) {
			name := extract.FirstText(s, "h3", "div.name", "a.link")
			if name == "" {
				return
			}

			href, _ := s.Find("a[href]").First().Attr("href")
			if href == "" {
				return
			}
			productURL := extract.AbsoluteURL(site.BaseURL, href)

			price, ok := extract.Price(extract.FirstText(s, "div.prc", "span.price", "div.prc-now"))
			if !ok {
				return
			}

			listing := newListing(name, price, productURL, site, region)

			if orig, ok := extract.Price(extract.FirstText(s, "div.prc-old", "span.old-price")); ok {
				listing.OriginalPrice = &orig
			}
			if img := extract.FirstAttr(s, []string{"img"}, "src", "data-src"); img != "" {
				listing.ImageURL = extract.AbsoluteURL(site.BaseURL, img)
			}
			if rating, ok := extract.Rating(extract.FirstText(s, "div.stars", "span.rating")); ok {
				listing.Rating = &rating
			}
			if count, ok := extract.ReviewCount(extract.FirstText(s, "div.rev", "span.reviews")); ok {
				listing.ReviewCount = &count
			}

			listings = append(listings, listing)
		})

	return listings, nil
}

// ProductDetails fetches a single product page.
func (j *Jumia) ProductDetails(ctx context.Context, productURL string) (*models.Listing, error) {
	html, err := j.fetch.get(ctx, productURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	root := doc.Selection
	name := extract.FirstText(root, "h1", "div.product-name")
	price, ok := extract.Price(extract.FirstText(root, "div.prc", "span.price"))
	if name == "" || !ok {
		return nil, nil
	}

	listing := models.Listing{
		Name:        name,
		Price:       price,
		ProductURL:  productURL,
		Description: extract.FirstText(root, "div.description", "div.product-description"),
		Brand:       extract.FirstText(root, "div.brand", "span.brand-name"),
		Category:    extract.FirstText(root, "nav.breadcrumb", "div.category"),
	}
	return &listing, nil
}
