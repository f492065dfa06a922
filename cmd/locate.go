package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/price-scout/internal/config"
	"mspro-labs/price-scout/internal/geoip"
)

var locateCmd = &cobra.Command{
	Use:   "locate [ip]",
	Short: "Resolve an IP address to a region",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLocate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(ip string) {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	resolver := geoip.NewResolver(appCfg.GeoIPKey, cfg.Scraping.UserAgent)
	loc := resolver.Resolve(context.Background(), ip)

	fmt.Printf("Country:  %s\n", loc.Country)
	fmt.Printf("City:     %s\n", loc.City)
	if loc.Region != "" {
		fmt.Printf("Region:   %s\n", loc.Region)
	}
	if loc.Timezone != "" {
		fmt.Printf("Timezone: %s\n", loc.Timezone)
	}
	fmt.Printf("IP:       %s\n", loc.IPAddress)
}
