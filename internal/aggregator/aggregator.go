// Package aggregator fans a search query out to every relevant store
// scraper, tolerates per-store failures, and merges the survivors into one
// price-ranked list.
package aggregator

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/models"
	"mspro-labs/price-scout/internal/pricing"
	"mspro-labs/price-scout/internal/scraper"
)

var logger = log.New(os.Stdout, "AGGREGATOR: ", log.LstdFlags)

// RunLogger receives the outcome of each per-store dispatch. Implementations
// must treat calls as fire-and-forget; errors stay on their side.
type RunLogger interface {
	LogRun(site, status string, count int, errMsg string, duration time.Duration)
}

// Service is the aggregation orchestrator.
type Service struct {
	cfg      *config.Config
	registry scraper.Registry
	runs     RunLogger
}

// New builds a Service. runs may be nil when no tracking store is attached.
func New(cfg *config.Config, registry scraper.Registry, runs RunLogger) *Service {
	return &Service{cfg: cfg, registry: registry, runs: runs}
}

// Search dispatches the query to every enabled, implemented store for the
// region (locals plus the international set) concurrently, then applies the
// markup, sorts by final price and truncates to limit.
//
// Each store is capped at limit/2 as a soft hint so local and international
// stores both get room; the hard cap is enforced once, after the merge.
// A store that fails contributes an empty list and never disturbs the rest.
func (s *Service) Search(ctx context.Context, query, region, category string, limit int) []models.Listing {
	local, international := s.cfg.SitesFor(region)

	var dispatch []config.SiteConfig
	for _, site := range append(append([]config.SiteConfig{}, local...), international...) {
		if !site.Enabled {
			continue
		}
		if _, ok := s.registry[site.Name]; !ok {
			continue
		}
		dispatch = append(dispatch, site)
	}
	if len(dispatch) == 0 {
		return nil
	}

	perSite := limit / 2
	if perSite < 1 {
		perSite = 1
	}

	// One slot per store keeps the merge order deterministic regardless of
	// which goroutine finishes first.
	results := make([][]models.Listing, len(dispatch))
	var wg sync.WaitGroup
	for i, site := range dispatch {
		wg.Add(1)
		go func(i int, site config.SiteConfig) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Printf("panic scraping %s: %v", site.Name, r)
					s.logRun(site.Name, "error", 0, "panic", 0)
				}
			}()

			start := time.Now()
			listings, err := s.registry[site.Name].Search(ctx, query, site, region, category, perSite)
			if err != nil {
				logger.Printf("scraping %s failed: %v", site.Name, err)
				s.logRun(site.Name, "error", 0, err.Error(), time.Since(start))
				return
			}
			s.logRun(site.Name, "success", len(listings), "", time.Since(start))
			results[i] = listings
		}(i, site)
	}
	wg.Wait()

	var merged []models.Listing
	for _, listings := range results {
		merged = append(merged, listings...)
	}

	pricing.Apply(merged, s.cfg.Markup)
	pricing.SortByFinalPrice(merged)

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// ProductDetails delegates a product-page fetch to the named store adapter.
func (s *Service) ProductDetails(ctx context.Context, siteName, productURL string) (*models.Listing, error) {
	sc, ok := s.registry[siteName]
	if !ok {
		return nil, nil
	}
	return sc.ProductDetails(ctx, productURL)
}

func (s *Service) logRun(site, status string, count int, errMsg string, duration time.Duration) {
	if s.runs != nil {
		s.runs.LogRun(site, status, count, errMsg, duration)
	}
}

// vocabulary backs autocomplete suggestions.
var vocabulary = []string{
	"smartphone", "laptop", "headphones", "shoes", "dress",
	"book", "watch", "camera", "gaming", "fitness",
	"kitchen", "home", "beauty", "electronics", "clothing",
}

// Suggestions filters the fixed vocabulary by case-insensitive substring
// match. The raw query is prepended when it is not already among the
// matches, so the caller's own text is always a valid suggestion.
func Suggestions(query string, limit int) []string {
	q := strings.ToLower(query)

	var matched []string
	for _, term := range vocabulary {
		if strings.Contains(strings.ToLower(term), q) {
			matched = append(matched, term)
		}
	}

	present := false
	for _, term := range matched {
		if term == q {
			present = true
			break
		}
	}
	if !present {
		matched = append([]string{query}, matched...)
	}

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
