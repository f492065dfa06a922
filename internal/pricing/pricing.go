// Package pricing applies the revenue-model markup to scraped listings
// and imposes the final price ordering on merged results.
package pricing

import (
	"math"
	"sort"

	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/models"
)

// Markup computes the fee added to a raw price: the configured percentage
// of the price, clamped into [MinAmount, MaxAmount] and rounded to cents.
// Pure and deterministic for any rawPrice >= 0.
func Markup(rawPrice float64, m config.Markup) float64 {
	markup := rawPrice * (m.Percentage / 100)
	markup = math.Max(m.MinAmount, markup)
	markup = math.Min(m.MaxAmount, markup)
	return math.Round(markup*100) / 100
}

// Apply sets FinalPrice = Price + Markup(Price) on every listing, in place.
func Apply(listings []models.Listing, m config.Markup) {
	for i := range listings {
		listings[i].FinalPrice = listings[i].Price + Markup(listings[i].Price, m)
	}
}

// SortByFinalPrice orders listings by ascending final price.
// The sort is stable so ties keep their source-arrival order.
func SortByFinalPrice(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].FinalPrice < listings[j].FinalPrice
	})
}
