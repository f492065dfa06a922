package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/price-scout/internal/aggregator"
	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/db"
	"mspro-labs/price-scout/internal/models"
	"mspro-labs/price-scout/internal/scraper"
)

var (
	searchRegion   string
	searchCategory string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stores once and print the ranked results",
	Long: `Runs one aggregated search from the command line.
Examples:
  price-scout search "wireless headphones"
  price-scout search --region uganda --limit 10 laptop`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(strings.Join(args, " "))
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchRegion, "region", "unknown", "Region used to pick local stores")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Optional category filter")
	searchCmd.Flags().IntVar(&searchLimit, "limit", models.LimitDefault, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(query string) {
	// 1. Config & DB
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	req := models.SearchRequest{Query: query, Category: searchCategory, Limit: searchLimit}
	if err := req.Validate(); err != nil {
		log.Fatalf("Invalid search: %v", err)
	}

	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	if err := db.RecordSearch(database, req.Query, "local", searchRegion, req.Category); err != nil {
		log.Printf("Warning: failed to record search: %v", err)
	}

	// 2. Run the aggregated search
	service := aggregator.New(cfg, scraper.NewRegistry(cfg.Scraping), dbRunLogger{db: database})
	listings := service.Search(context.Background(), req.Query, searchRegion, req.Category, req.Limit)

	// 3. Display
	if len(listings) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Printf("\n🔍 Results for: %q (region: %s)\n\n", req.Query, searchRegion)
	for i, l := range listings {
		fmt.Printf("#%d %.2f %s — %s (%s)\n", i+1, l.FinalPrice, l.Currency, l.Name, l.StoreName)
		fmt.Printf("   %s\n", l.ProductURL)
	}
}
