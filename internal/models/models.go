package models

import (
	"errors"
	"time"
)

// Validation errors surfaced at the request boundary.
var (
	ErrInvalidQuery = errors.New("query must be between 1 and 200 characters")
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
)

const (
	// LimitDefault is used when no result limit is given.
	LimitDefault = 20
	queryMaxLen  = 200
	limitMax     = 100
)

// Listing holds one product extracted from a store's search results.
// Price is the raw scraped price; FinalPrice is set by the pricing layer
// once the markup has been applied and is never mutated afterwards.
type Listing struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	FinalPrice    float64   `json:"final_price"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	Currency      string    `json:"currency"`
	ImageURL      string    `json:"image_url,omitempty"`
	ProductURL    string    `json:"product_url"`
	StoreName     string    `json:"store_name"`
	StoreURL      string    `json:"store_url,omitempty"`
	Category      string    `json:"category,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	ReviewCount   *int      `json:"review_count,omitempty"`
	Availability  bool      `json:"availability"`
	Region        string    `json:"region"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// Location is a resolved geolocation for a caller's IP address.
type Location struct {
	Country   string `json:"country"`
	City      string `json:"city,omitempty"`
	Region    string `json:"region,omitempty"`
	IPAddress string `json:"ip_address"`
	Timezone  string `json:"timezone,omitempty"`
}

// SearchRequest is an aggregation request as received at the boundary.
type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Validate checks boundary constraints and applies the default limit.
func (r *SearchRequest) Validate() error {
	if len(r.Query) < 1 || len(r.Query) > queryMaxLen {
		return ErrInvalidQuery
	}
	if r.Limit == 0 {
		r.Limit = LimitDefault
	}
	if r.Limit < 1 || r.Limit > limitMax {
		return ErrInvalidLimit
	}
	return nil
}
