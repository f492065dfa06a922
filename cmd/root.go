package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "price-scout",
	Short: "Aggregated product price search across e-commerce stores",
	Long: `price-scout searches multiple e-commerce stores concurrently,
applies the configured markup to every price, and returns one list
ranked by final price. Local stores are picked per region, with a
fixed international set always included.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
