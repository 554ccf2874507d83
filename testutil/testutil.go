package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/lovepool/lovebot/botdb"
)

// TestDB wraps a real database connection for integration tests.
type TestDB struct {
	*sql.DB
	queries *botdb.Queries
	ctx     context.Context
}

// NewTestDB connects to the database named by TEST_DATABASE_DSN and
// makes sure the schema exists. Tests are skipped when the variable
// is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping integration test")
	}

	ctx := context.Background()
	dbconn, err := botdb.OpenDB(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	queries := botdb.New(dbconn)
	if err := queries.Setup(ctx); err != nil {
		t.Fatalf("Failed to set up test schema: %v", err)
	}

	return &TestDB{
		DB:      dbconn,
		queries: queries,
		ctx:     ctx,
	}
}

// Queries returns the botdb queries instance.
func (tdb *TestDB) Queries() *botdb.Queries {
	return tdb.queries
}

// Context returns the test context.
func (tdb *TestDB) Context() context.Context {
	return tdb.ctx
}

// CleanupTestData removes identities created by tests. Tests use ids
// with a "test-" prefix so live data is never touched.
func (tdb *TestDB) CleanupTestData(t *testing.T) {
	t.Helper()
	_, err := tdb.ExecContext(tdb.ctx,
		`DELETE FROM identities WHERE identity_id LIKE 'test-%'`)
	if err != nil {
		t.Logf("Error cleaning up identities: %v", err)
	}
}
