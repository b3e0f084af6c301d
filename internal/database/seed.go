package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Default development credentials created by Seed.
const (
	SeedAdminEmail    = "admin@coinpress.local"
	SeedAdminUsername = "admin"
	SeedAdminPassword = "admin12345"
)

// starterCategories are inserted on first seed so the generation pipeline
// has something to schedule against.
var starterCategories = []struct {
	Name, Slug, Description, Icon string
}{
	{"Crypto", "crypto", "Bitcoin, Ethereum and the wider digital asset market.", "bitcoin"},
	{"Markets", "markets", "Equities, indices and macro market moves.", "trending-up"},
	{"Personal Finance", "personal-finance", "Budgeting, saving and long-term investing.", "wallet"},
}

// Seed populates the database with initial development data.
// It creates a default admin user and starter categories if none exist.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, display_name, is_admin)
		VALUES ($1, $2, $3, $4, TRUE)
	`, SeedAdminUsername, SeedAdminEmail, string(hash), "Admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for _, c := range starterCategories {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug, description, icon)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING
		`, c.Name, c.Slug, c.Description, c.Icon)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.Slug, err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", SeedAdminEmail,
		"password", SeedAdminPassword,
		"categories", len(starterCategories),
	)

	return nil
}
