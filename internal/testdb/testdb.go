// Package testdb provides database helpers for integration tests. Tests
// using it are skipped unless a test database URL is configured in the
// environment, so the default test run stays hermetic.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/studypace/srs-api/internal/platform/postgres"
)

// connectTimeout bounds the initial ping so a misconfigured URL fails the
// test quickly instead of hanging it.
const connectTimeout = 5 * time.Second

// URL returns the configured test database URL, checking DATABASE_URL and
// SRS_TEST_DB_URL in that order. Empty means integration tests should be
// skipped.
func URL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("SRS_TEST_DB_URL")
}

// Get opens a connection to the test database, applies migrations and
// truncates the review_states table so every test starts clean. The test is
// skipped when no database URL is configured; the connection is closed
// automatically when the test finishes.
func Get(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := URL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or SRS_TEST_DB_URL not set, skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database connection")
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Logf("error closing test database: %v", closeErr)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	require.NoError(t, postgres.RunMigrations(db, "up", nil), "failed to migrate test database")

	_, err = db.Exec("TRUNCATE TABLE review_states")
	require.NoError(t, err, "failed to truncate review_states")

	return db
}
