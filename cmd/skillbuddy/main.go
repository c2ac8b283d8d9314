// Package main provides the entry point for the Skillbuddy interview practice API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "skillbuddy",
	Short: "Skillbuddy interview practice API",
	Long: "Skillbuddy serves interview practice sessions, XP and leveling, and user profiles over REST. " +
		"Records go to PostgreSQL, MongoDB or SQLite when configured, with local JSON files as the fallback.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
