// Package main is the entry point for the CoinPress API server and its
// maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coinpress",
	Short: "Finance and crypto blog API with scheduled AI post generation",
	Long: `CoinPress serves the blog JSON API and generates scheduled posts with
the configured AI provider.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(generateDueCmd)
}
