// Package scraper implements the per-store search contract. Every store
// adapter satisfies the Scraper interface and is looked up by site name in
// the Registry, so adding a store never touches the aggregation layer.
package scraper

import (
	"context"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/extract"
	"mspro-labs/price-scout/internal/models"
)

var logger = log.New(os.Stdout, "SCRAPER: ", log.LstdFlags|log.Lshortfile)

// Scraper is the uniform search contract one store adapter fulfils.
type Scraper interface {
	// Search returns at most limit listings for the query on the given
	// store. Transport or parse trouble surfaces as an error; individual
	// unparsable listing containers are dropped silently.
	Search(ctx context.Context, query string, site config.SiteConfig, region, category string, limit int) ([]models.Listing, error)

	// ProductDetails fetches one product page and returns what could be
	// extracted from it, or nil when the page yields nothing usable.
	ProductDetails(ctx context.Context, productURL string) (*models.Listing, error)
}

// Registry maps site names from the catalog to their implementations.
type Registry map[string]Scraper

// NewRegistry wires the implemented store adapters. Catalog entries
// without an adapter here are simply never dispatched.
func NewRegistry(cfg config.Scraping) Registry {
	f := newFetcher(cfg)
	return Registry{
		"jumia":  &Jumia{fetch: f},
		"amazon": &Amazon{render: newRenderer(cfg)},
	}
}

// searchURL expands the {query} placeholder in a site's URL template.
func searchURL(site config.SiteConfig, query string) string {
	return strings.Replace(site.SearchURL, "{query}", url.QueryEscape(query), 1)
}

// newListing fills in the generated and bookkeeping fields shared by all
// adapters. Name is cleaned here; price must already be parsed.
func newListing(name string, price float64, productURL string, site config.SiteConfig, region string) models.Listing {
	return models.Listing{
		ID:           uuid.NewString(),
		Name:         extract.CleanText(name),
		Price:        price,
		ProductURL:   productURL,
		StoreName:    site.Name,
		StoreURL:     site.BaseURL,
		Currency:     site.Currency,
		Availability: true,
		Region:       region,
		ScrapedAt:    time.Now(),
	}
}

// containers returns the matches of the first selector alternative that
// finds anything on the page.
func containers(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, sel := range selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return doc.Find(selectors[0])
}
