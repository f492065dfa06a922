package cmd

import (
	"database/sql"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/price-scout/internal/aggregator"
	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/db"
	"mspro-labs/price-scout/internal/geoip"
	"mspro-labs/price-scout/internal/models"
	"mspro-labs/price-scout/internal/scraper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// dbRunLogger writes per-store scrape outcomes to the tracking store.
type dbRunLogger struct {
	db *sql.DB
}

func (l dbRunLogger) LogRun(site, status string, count int, errMsg string, duration time.Duration) {
	if err := db.LogScraperRun(l.db, site, status, count, errMsg, duration); err != nil {
		log.Printf("Warning: failed to log scraper run: %v", err)
	}
}

func runServer() {
	// 1. Setup
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	resolver := geoip.NewResolver(appCfg.GeoIPKey, cfg.Scraping.UserAgent)
	service := aggregator.New(cfg, scraper.NewRegistry(cfg.Scraping), dbRunLogger{db: database})

	// 2. Routes
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "price-scout"})
	})

	http.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req models.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := req.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ip := clientIP(r)
		location := resolver.Resolve(r.Context(), ip)

		// Tracking is a side effect; never let it slow down or fail the search.
		go func() {
			if err := db.RecordSearch(database, req.Query, ip, location.Country, req.Category); err != nil {
				log.Printf("Warning: failed to record search: %v", err)
			}
		}()

		listings := service.Search(r.Context(), req.Query, location.Country, req.Category, req.Limit)
		if listings == nil {
			listings = []models.Listing{}
		}
		respondJSON(w, http.StatusOK, listings)
	})

	http.HandleFunc("/api/products/details", func(w http.ResponseWriter, r *http.Request) {
		site := r.URL.Query().Get("site")
		productURL := r.URL.Query().Get("url")
		if site == "" || productURL == "" {
			http.Error(w, "missing query parameters 'site' and 'url'", http.StatusBadRequest)
			return
		}
		listing, err := service.ProductDetails(r.Context(), site, productURL)
		if err != nil {
			log.Printf("Details fetch failed: %v", err)
			http.Error(w, "failed to fetch product details", http.StatusBadGateway)
			return
		}
		if listing == nil {
			http.NotFound(w, r)
			return
		}
		respondJSON(w, http.StatusOK, listing)
	})

	http.HandleFunc("/api/search/autocomplete", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, "missing query parameter 'q'", http.StatusBadRequest)
			return
		}
		limit := queryInt(r, "limit", 10)
		respondJSON(w, http.StatusOK, map[string][]string{
			"suggestions": aggregator.Suggestions(query, limit),
		})
	})

	http.HandleFunc("/api/user/location", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, resolver.Resolve(r.Context(), clientIP(r)))
	})

	http.HandleFunc("/api/user/history", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", models.LimitDefault)
		entries, err := db.SearchHistory(database, clientIP(r), limit)
		if err != nil {
			log.Printf("DB error: %v", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []db.SearchEntry{}
		}
		respondJSON(w, http.StatusOK, entries)
	})

	http.HandleFunc("/api/recommendations/trending", func(w http.ResponseWriter, r *http.Request) {
		location := resolver.Resolve(r.Context(), clientIP(r))
		limit := queryInt(r, "limit", 10)
		trending, err := db.Trending(database, location.Country, limit)
		if err != nil {
			log.Printf("DB error: %v", err)
			http.Error(w, "failed to load trending products", http.StatusInternalServerError)
			return
		}
		if trending == nil {
			trending = []db.TrendingProduct{}
		}
		respondJSON(w, http.StatusOK, trending)
	})

	// 3. Start Server
	log.Printf("🌍 API listening at %s", appCfg.ListenAddr)
	server := &http.Server{
		Addr:        appCfg.ListenAddr,
		ReadTimeout: 5 * time.Second,
		// Searches fan out to live stores, so writes get generous room.
		WriteTimeout: 2 * cfg.Scraping.Timeout,
	}
	log.Fatal(server.ListenAndServe())
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// clientIP prefers the first forwarded address, falling back to the peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
