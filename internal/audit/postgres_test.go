package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB attempts to connect to a PostgreSQL database for testing.
// It skips the test if the connection cannot be established.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	pgHost := getenv("PGHOST", "localhost")
	pgPort := getenv("PGPORT", "5432")
	pgUser := getenv("PGUSER", "user")
	pgPassword := getenv("PGPASSWORD", "password")
	pgDB := getenv("PGDATABASE", "testdb")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort, pgUser, pgPassword, pgDB)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("skipping postgres journal tests: could not connect: %v", err)
	}

	_, err = db.Exec("DROP TABLE IF EXISTS audit_entries")
	require.NoError(t, err)

	return db
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestPostgresJournal_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	journal := NewPostgresJournal(db)
	require.NoError(t, journal.EnsureSchema(ctx))

	require.NoError(t, journal.Append(ctx, Entry{Kind: KindLoanOpened, BookID: 1, LoanID: 1}))
	require.NoError(t, journal.Append(ctx, Entry{Kind: KindFineAssessed, BookID: 1}))
	require.NoError(t, journal.Append(ctx, Entry{Kind: KindLoanOpened, BookID: 2, LoanID: 2}))

	entries, err := journal.ByBook(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindLoanOpened, entries[0].Kind)
	assert.Equal(t, KindFineAssessed, entries[1].Kind)
}
