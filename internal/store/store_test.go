// store_test.go provides the shared helpers for store tests: a gated
// PostgreSQL integration database and a sqlmock-backed *sql.DB for unit
// tests of the generated SQL.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"coinpress/internal/database"
	"coinpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "coinpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "coinpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// newMock returns a sqlmock database and verifies all expectations at cleanup.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

// fixture creates a user and a category with unique names and removes
// everything hanging off them when the test ends.
type fixture struct {
	user     *models.User
	category *models.Category
}

func newFixture(t *testing.T, db *sql.DB) fixture {
	t.Helper()
	ctx := context.Background()
	tag := uuid.NewString()[:8]

	user, err := NewUserStore(db).Create(ctx, "fx-"+tag, "fx-"+tag+"@store-test.local", "password123", "Fixture", true)
	require.NoError(t, err)

	cat, err := NewCategoryStore(db).Create(ctx, &models.Category{
		Name: "Fixture " + tag,
		Slug: "fixture-" + tag,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Exec("DELETE FROM generation_schedules WHERE category_id = $1", cat.ID)
		db.Exec("DELETE FROM topics WHERE category_id = $1", cat.ID)
		db.Exec("DELETE FROM posts WHERE category_id = $1", cat.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", cat.ID)
		db.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return fixture{user: user, category: cat}
}
