package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/db"
	"mspro-labs/price-scout/internal/models"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List searches recorded from this machine",
	Run: func(cmd *cobra.Command, args []string) {
		runHistory()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", models.LimitDefault, "Maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory() {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	entries, err := db.SearchHistory(database, "local", historyLimit)
	if err != nil {
		log.Fatalf("Failed to list history: %v", err)
	}

	fmt.Println("📜 Search History")
	fmt.Println("------------------------------------")
	if len(entries) == 0 {
		fmt.Println("No history found.")
		return
	}
	for _, e := range entries {
		line := e.Query
		if e.Category != "" {
			line += " [" + e.Category + "]"
		}
		fmt.Printf("[%s] %s\n", e.SearchTime.Format("2006-01-02 15:04"), line)
	}
}
