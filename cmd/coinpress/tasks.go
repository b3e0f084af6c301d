package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"coinpress/internal/cache"
	"coinpress/internal/database"
	"coinpress/internal/generation"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(*cobra.Command, []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		a.Close()
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default admin and starter categories",
	Long: `Create the default admin user and the starter categories.

Does nothing when any user already exists.`,
	RunE: func(*cobra.Command, []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()
		return database.Seed(a.db)
	},
}

var generateDueCmd = &cobra.Command{
	Use:   "generate-due",
	Short: "Generate every scheduled post that is due and print the summary",
	RunE:  runGenerateDue,
}

func runGenerateDue(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	covers, err := a.storage()
	if err != nil {
		return err
	}
	registry := a.aiRegistry()

	// The response cache is optional here: without Valkey, cached pages
	// expire on their own.
	var p *generation.Processor
	valkey, err := a.connectValkey()
	if err != nil {
		slog.Warn("valkey unavailable, cached responses will not be invalidated", "error", err)
		p, err = a.processor(registry, covers, nil)
	} else {
		defer valkey.Close()
		p, err = a.processor(registry, covers, cache.NewResponses(valkey, cache.DefaultTTL))
	}
	if err != nil {
		return err
	}

	summary, err := p.RunDue(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// generationService wires the admin scheduling service.
func generationService(a *app) *generation.Service {
	return generation.NewService(a.schedules, a.topics, a.categories)
}
