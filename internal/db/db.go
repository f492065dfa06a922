// Package db is the tracking store: users, search history, trending
// queries and per-site scraper run logs. Callers treat writes as
// fire-and-forget side effects; a failed write never affects search results.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only
)

// Connect opens a connection to the SQLite database and ensures the schema exists.
// It automatically applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*sql.DB, error) {
	// Use robust connection settings to prevent "database locked" errors
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ip_address TEXT UNIQUE NOT NULL,
	  country TEXT,
	  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_users_ip ON users(ip_address);
	`
	if _, err := db.Exec(usersTable); err != nil {
		return err
	}

	historyTable := `
	CREATE TABLE IF NOT EXISTS search_history (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  query TEXT NOT NULL,
	  category TEXT,
	  country TEXT,
	  search_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  FOREIGN KEY (user_id) REFERENCES users (id)
	);
	CREATE INDEX IF NOT EXISTS idx_history_user ON search_history(user_id);
	`
	if _, err := db.Exec(historyTable); err != nil {
		return err
	}

	trendingTable := `
	CREATE TABLE IF NOT EXISTS trending_products (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  product_name TEXT NOT NULL,
	  category TEXT,
	  country TEXT,
	  search_count INTEGER DEFAULT 1,
	  last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trending_country ON trending_products(country);
	`
	if _, err := db.Exec(trendingTable); err != nil {
		return err
	}

	logsTable := `
	CREATE TABLE IF NOT EXISTS scraper_logs (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  site_name TEXT NOT NULL,
	  status TEXT NOT NULL,
	  products_scraped INTEGER DEFAULT 0,
	  error_message TEXT,
	  execution_time_ms INTEGER,
	  scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(logsTable); err != nil {
		return err
	}

	return nil
}

// RecordSearch upserts the searching user, appends a history entry and
// bumps the matching trending counter, all in one transaction.
func RecordSearch(db *sql.DB, query, ip, country, category string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO users (ip_address, country) VALUES (?, ?)
		ON CONFLICT(ip_address) DO UPDATE SET last_seen = CURRENT_TIMESTAMP;
	`, ip, country)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to upsert user %s: %w", ip, err)
	}

	_, err = tx.Exec(`
		INSERT INTO search_history (user_id, query, category, country)
		SELECT id, ?, ?, ? FROM users WHERE ip_address = ?;
	`, query, nullable(category), country, ip)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record search: %w", err)
	}

	if err := bumpTrending(tx, query, category, country); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func bumpTrending(tx *sql.Tx, query, category, country string) error {
	res, err := tx.Exec(`
		UPDATE trending_products
		SET search_count = search_count + 1, last_updated = CURRENT_TIMESTAMP
		WHERE country = ? AND lower(product_name) LIKE '%' || lower(?) || '%';
	`, country, query)
	if err != nil {
		return fmt.Errorf("failed to update trending: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}

	_, err = tx.Exec(`
		INSERT INTO trending_products (product_name, category, country) VALUES (?, ?, ?);
	`, query, nullable(category), country)
	if err != nil {
		return fmt.Errorf("failed to insert trending: %w", err)
	}
	return nil
}

// SearchEntry is one row of a user's search history.
type SearchEntry struct {
	ID         int64     `json:"id"`
	Query      string    `json:"query"`
	Category   string    `json:"category,omitempty"`
	Country    string    `json:"country"`
	SearchTime time.Time `json:"search_time"`
}

// SearchHistory returns a user's most recent searches, newest first.
// An unknown IP yields an empty slice, not an error.
func SearchHistory(db *sql.DB, ip string, limit int) ([]SearchEntry, error) {
	rows, err := db.Query(`
		SELECT h.id, h.query, COALESCE(h.category, ''), COALESCE(h.country, ''), h.search_time
		FROM search_history h
		JOIN users u ON u.id = h.user_id
		WHERE u.ip_address = ?
		ORDER BY h.search_time DESC
		LIMIT ?;
	`, ip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SearchEntry
	for rows.Next() {
		var e SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.Category, &e.Country, &e.SearchTime); err == nil {
			entries = append(entries, e)
		}
	}
	return entries, rows.Err()
}

// TrendingProduct is one aggregated search-frequency row.
type TrendingProduct struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	SearchCount int    `json:"search_count"`
}

// Trending returns the most searched product names for a country.
func Trending(db *sql.DB, country string, limit int) ([]TrendingProduct, error) {
	rows, err := db.Query(`
		SELECT product_name, COALESCE(category, ''), search_count
		FROM trending_products
		WHERE country = ?
		ORDER BY search_count DESC, last_updated DESC
		LIMIT ?;
	`, country, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []TrendingProduct
	for rows.Next() {
		var p TrendingProduct
		if err := rows.Scan(&p.Name, &p.Category, &p.SearchCount); err == nil {
			products = append(products, p)
		}
	}
	return products, rows.Err()
}

// LogScraperRun records the outcome of one per-site scrape dispatch.
func LogScraperRun(db *sql.DB, site, status string, count int, errMsg string, duration time.Duration) error {
	_, err := db.Exec(`
		INSERT INTO scraper_logs (site_name, status, products_scraped, error_message, execution_time_ms)
		VALUES (?, ?, ?, ?, ?);
	`, site, status, count, nullable(errMsg), duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to log scraper run for %s: %w", site, err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
