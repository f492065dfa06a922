// Package geoip resolves a caller's IP address to a location through an
// ordered chain of geolocation providers. Resolution never fails: when
// every provider is unreachable the caller gets an "Unknown" location.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"mspro-labs/price-scout/internal/models"
)

var logger = log.New(os.Stdout, "GEOIP: ", log.LstdFlags)

const providerTimeout = 10 * time.Second

// provider is one fallback geolocation API. Each has its own response
// shape, so each carries its own parse function. A parse that returns
// addressOnly signals the provider gave us an IP but no location.
type provider struct {
	name  string
	url   func(ip string) string
	parse func(body []byte, ip string) (models.Location, bool)
}

// Resolver walks providers in order and maps the first usable response
// into a Location.
type Resolver struct {
	apiKey    string
	userAgent string
	client    *http.Client

	authoritativeURL string
	fallbacks        []provider
	// lookupURL serves the one-step recursion used when a provider
	// returns only an address. It never re-enters the general chain.
	lookupURL func(ip string) string
}

// NewResolver builds the default provider chain. apiKey enables the
// authoritative keyed provider, tried before any free fallback.
func NewResolver(apiKey, userAgent string) *Resolver {
	r := &Resolver{
		apiKey:           apiKey,
		userAgent:        userAgent,
		client:           &http.Client{Timeout: providerTimeout},
		authoritativeURL: "https://geoip-db.com/json/%s",
		lookupURL: func(ip string) string {
			return "http://ip-api.com/json/" + ip
		},
	}
	r.fallbacks = []provider{
		{
			name:  "ip-api.com",
			url:   func(ip string) string { return "http://ip-api.com/json/" + ip },
			parse: parseIPAPI,
		},
		{
			name:  "ipapi.co",
			url:   func(ip string) string { return "https://ipapi.co/" + ip + "/json/" },
			parse: parseIPAPICo,
		},
		{
			name:  "ipify.org",
			url:   func(ip string) string { return "https://api.ipify.org?format=json" },
			parse: parseIPify,
		},
	}
	return r
}

// Resolve maps an IP address to a Location. Provider errors and timeouts
// are swallowed and the next provider is tried; with no provider left the
// result defaults to country/city "Unknown".
func (r *Resolver) Resolve(ctx context.Context, ip string) models.Location {
	if r.apiKey != "" {
		if loc, ok := r.resolveAuthoritative(ctx, ip); ok {
			return loc
		}
	}

	for _, p := range r.fallbacks {
		body, err := r.get(ctx, p.url(ip))
		if err != nil {
			logger.Printf("provider %s failed: %v", p.name, err)
			continue
		}
		loc, addressOnly := p.parse(body, ip)
		if addressOnly {
			// The provider only told us the address. Look that address up
			// directly instead of re-entering the chain.
			return r.lookupByIP(ctx, loc.IPAddress)
		}
		if loc.Country != "" {
			return loc
		}
	}

	return unknownLocation(ip)
}

func (r *Resolver) resolveAuthoritative(ctx context.Context, ip string) (models.Location, bool) {
	body, err := r.get(ctx, fmt.Sprintf(r.authoritativeURL, ip))
	if err != nil {
		logger.Printf("authoritative provider failed: %v", err)
		return models.Location{}, false
	}
	var data struct {
		CountryName string `json:"country_name"`
		City        string `json:"city"`
		State       string `json:"state"`
		TimeZone    string `json:"time_zone"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.CountryName == "" {
		return models.Location{}, false
	}
	return models.Location{
		Country:   data.CountryName,
		City:      data.City,
		Region:    data.State,
		IPAddress: ip,
		Timezone:  data.TimeZone,
	}, true
}

// lookupByIP is the dedicated second step for address-only providers.
func (r *Resolver) lookupByIP(ctx context.Context, ip string) models.Location {
	body, err := r.get(ctx, r.lookupURL(ip))
	if err != nil {
		logger.Printf("address lookup failed for %s: %v", ip, err)
		return unknownLocation(ip)
	}
	loc, _ := parseIPAPI(body, ip)
	if loc.Country == "" {
		return unknownLocation(ip)
	}
	return loc
}

func (r *Resolver) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func parseIPAPI(body []byte, ip string) (models.Location, bool) {
	var data struct {
		Country    string `json:"country"`
		City       string `json:"city"`
		RegionName string `json:"regionName"`
		Query      string `json:"query"`
		Timezone   string `json:"timezone"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return models.Location{}, false
	}
	addr := data.Query
	if addr == "" {
		addr = ip
	}
	return models.Location{
		Country:   data.Country,
		City:      data.City,
		Region:    data.RegionName,
		IPAddress: addr,
		Timezone:  data.Timezone,
	}, false
}

func parseIPAPICo(body []byte, ip string) (models.Location, bool) {
	var data struct {
		CountryName string `json:"country_name"`
		City        string `json:"city"`
		Region      string `json:"region"`
		IP          string `json:"ip"`
		Timezone    string `json:"timezone"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return models.Location{}, false
	}
	addr := data.IP
	if addr == "" {
		addr = ip
	}
	return models.Location{
		Country:   data.CountryName,
		City:      data.City,
		Region:    data.Region,
		IPAddress: addr,
		Timezone:  data.Timezone,
	}, false
}

// parseIPify handles the address-only provider: the response carries just
// an IP, so the caller must follow up with a direct lookup.
func parseIPify(body []byte, ip string) (models.Location, bool) {
	var data struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.IP == "" {
		return models.Location{}, false
	}
	return models.Location{IPAddress: data.IP}, true
}

func unknownLocation(ip string) models.Location {
	return models.Location{
		Country:   "Unknown",
		City:      "Unknown",
		IPAddress: ip,
	}
}
