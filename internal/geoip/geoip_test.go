package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestResolveDefaultsToUnknown(t *testing.T) {
	dead := httptest.NewServer(nil)
	dead.Close() // every provider now gets connection refused

	r := NewResolver("", "test-agent")
	for i := range r.fallbacks {
		r.fallbacks[i].url = func(string) string { return dead.URL }
	}

	loc := r.Resolve(context.Background(), "203.0.113.7")
	if loc.Country != "Unknown" || loc.City != "Unknown" {
		t.Errorf("got %q/%q; want Unknown/Unknown", loc.Country, loc.City)
	}
	if loc.IPAddress != "203.0.113.7" {
		t.Errorf("IP not preserved: %q", loc.IPAddress)
	}
}

func TestResolveFirstWorkingProviderWins(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(
		`{"country":"Uganda","city":"Kampala","regionName":"Central","query":"203.0.113.7","timezone":"Africa/Kampala"}`))
	defer srv.Close()

	r := NewResolver("", "test-agent")
	r.fallbacks[0].url = func(string) string { return srv.URL }
	// The remaining providers must never matter.
	r.fallbacks = r.fallbacks[:1]

	loc := r.Resolve(context.Background(), "203.0.113.7")
	if loc.Country != "Uganda" || loc.City != "Kampala" || loc.Region != "Central" {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.Timezone != "Africa/Kampala" {
		t.Errorf("Timezone = %q", loc.Timezone)
	}
}

func TestResolveSkipsNon200Providers(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer failing.Close()
	working := httptest.NewServer(jsonHandler(
		`{"country_name":"Kenya","city":"Nairobi","region":"Nairobi","ip":"203.0.113.9","timezone":"Africa/Nairobi"}`))
	defer working.Close()

	r := NewResolver("", "test-agent")
	r.fallbacks[0].url = func(string) string { return failing.URL }
	r.fallbacks[1].url = func(string) string { return working.URL }
	r.fallbacks = r.fallbacks[:2]

	loc := r.Resolve(context.Background(), "203.0.113.9")
	if loc.Country != "Kenya" {
		t.Errorf("Country = %q; want Kenya", loc.Country)
	}
}

// An address-only provider response triggers exactly one follow-up lookup
// against the dedicated lookup endpoint, not the full chain again.
func TestResolveAddressOnlyProviderRecursesOnce(t *testing.T) {
	ipOnly := httptest.NewServer(jsonHandler(`{"ip":"198.51.100.4"}`))
	defer ipOnly.Close()

	var lookups int
	lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups++
		jsonHandler(`{"country":"Nigeria","city":"Lagos","regionName":"Lagos","query":"198.51.100.4"}`)(w, r)
	}))
	defer lookup.Close()

	r := NewResolver("", "test-agent")
	r.fallbacks = []provider{{
		name:  "ipify.org",
		url:   func(string) string { return ipOnly.URL },
		parse: parseIPify,
	}}
	r.lookupURL = func(ip string) string { return lookup.URL + "/" + ip }

	loc := r.Resolve(context.Background(), "unused")
	if loc.Country != "Nigeria" {
		t.Errorf("Country = %q; want Nigeria", loc.Country)
	}
	if loc.IPAddress != "198.51.100.4" {
		t.Errorf("IPAddress = %q; want the looked-up address", loc.IPAddress)
	}
	if lookups != 1 {
		t.Errorf("lookup endpoint hit %d times; want 1", lookups)
	}
}

func TestResolveAuthoritativeProviderFirst(t *testing.T) {
	auth := httptest.NewServer(jsonHandler(
		`{"country_name":"Uganda","city":"Entebbe","state":"Central","time_zone":"Africa/Kampala"}`))
	defer auth.Close()

	r := NewResolver("secret-key", "test-agent")
	r.authoritativeURL = auth.URL + "/%s"
	r.fallbacks = nil // must not be needed

	loc := r.Resolve(context.Background(), "203.0.113.2")
	if loc.Country != "Uganda" || loc.City != "Entebbe" {
		t.Errorf("unexpected location: %+v", loc)
	}
}
