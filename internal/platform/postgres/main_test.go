package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/guidematch/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// testDB is shared by every integration test in this package.
var testDB *sql.DB

// TestMain connects once and applies the embedded migrations. Without
// DATABASE_URL the integration tests are skipped.
func TestMain(m *testing.M) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		os.Exit(m.Run())
	}

	var err error
	testDB, err = sql.Open("pgx", dbURL)
	if err != nil {
		fmt.Printf("Failed to open database connection: %v\n", err)
		os.Exit(1)
	}
	testDB.SetMaxOpenConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := testDB.PingContext(ctx); err != nil {
		cancel()
		fmt.Printf("Failed to ping database: %v\n", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(ctx, testDB, "up", nil); err != nil {
		cancel()
		fmt.Printf("Failed to apply migrations: %v\n", err)
		os.Exit(1)
	}
	cancel()

	exitCode := m.Run()

	if err := testDB.Close(); err != nil {
		fmt.Printf("Failed to close database connection: %v\n", err)
	}
	os.Exit(exitCode)
}

// withTx runs fn inside a transaction that is always rolled back, so tests
// leave no rows behind.
func withTx(t *testing.T, fn func(tx *sql.Tx)) {
	t.Helper()
	if testDB == nil {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	tx, err := testDB.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() {
		_ = tx.Rollback()
	}()

	fn(tx)
}
