package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath     string
	ConfigPath string // Path to the YAML config file
	ListenAddr string
	GeoIPKey   string // Optional key for the authoritative geolocation provider
}

// SiteConfig holds the settings for one target store (from YAML).
type SiteConfig struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	SearchURL string `yaml:"search_url"` // Must contain a single {query} placeholder
	Currency  string `yaml:"currency"`
	Enabled   bool   `yaml:"enabled"`
}

// Markup holds the revenue-model constants. The markup added to a raw
// price is raw*Percentage/100 clamped into [MinAmount, MaxAmount].
type Markup struct {
	Percentage float64 `yaml:"percentage"`
	MinAmount  float64 `yaml:"min_amount"`
	MaxAmount  float64 `yaml:"max_amount"`
}

// Scraping holds shared fetch tuning.
type Scraping struct {
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	UserAgent      string        `yaml:"user_agent"`
	DelaySeconds   float64       `yaml:"delay_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// Config is the full YAML configuration: markup rules, fetch tuning and
// the site catalog keyed by region plus the always-included international set.
type Config struct {
	Markup        Markup                  `yaml:"markup"`
	Scraping      Scraping                `yaml:"scraping"`
	Regions       map[string][]SiteConfig `yaml:"regions"`
	International []SiteConfig            `yaml:"international"`
}

// GetAppConfig reads basic infrastructure settings from environment variables.
// A .env file is loaded first if present, so local runs need no exports.
func GetAppConfig() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		DBPath:     os.Getenv("DB_PATH"),
		ConfigPath: os.Getenv("CONFIG_PATH"),
		ListenAddr: os.Getenv("LISTEN_ADDR"),
		GeoIPKey:   os.Getenv("GEOIP_API_KEY"),
	}

	// Set defaults if not provided
	if cfg.DBPath == "" {
		cfg.DBPath = "./local-data/price-scout.db"
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = "config.yaml"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	return cfg, nil
}

// Load reads and validates the YAML configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scraping.TimeoutSeconds == 0 {
		c.Scraping.TimeoutSeconds = 30
	}
	if c.Scraping.UserAgent == "" {
		c.Scraping.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	c.Scraping.Timeout = time.Duration(c.Scraping.TimeoutSeconds) * time.Second
}

// Validate enforces the startup invariants: markup bounds must be ordered
// and every search URL template must carry exactly one {query} placeholder.
func (c *Config) Validate() error {
	if c.Markup.MinAmount > c.Markup.MaxAmount {
		return fmt.Errorf("markup min_amount %.2f exceeds max_amount %.2f",
			c.Markup.MinAmount, c.Markup.MaxAmount)
	}
	if c.Markup.Percentage < 0 {
		return fmt.Errorf("markup percentage must not be negative, got %.2f", c.Markup.Percentage)
	}
	for region, sites := range c.Regions {
		for _, s := range sites {
			if err := validateSite(s); err != nil {
				return fmt.Errorf("region %q: %w", region, err)
			}
		}
	}
	for _, s := range c.International {
		if err := validateSite(s); err != nil {
			return fmt.Errorf("international: %w", err)
		}
	}
	return nil
}

func validateSite(s SiteConfig) error {
	if s.Name == "" {
		return fmt.Errorf("site with base_url %q has no name", s.BaseURL)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("site %q has no base_url", s.Name)
	}
	if strings.Count(s.SearchURL, "{query}") != 1 {
		return fmt.Errorf("site %q search_url must contain exactly one {query} placeholder", s.Name)
	}
	return nil
}

// SitesFor returns the site catalog relevant to a region: the local set
// for that region (case-insensitive lookup, empty when unknown) plus the
// international set, which is always included.
func (c *Config) SitesFor(region string) (local, international []SiteConfig) {
	return c.Regions[strings.ToLower(region)], c.International
}
