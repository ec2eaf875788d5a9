package repo

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Repo tests run against a real Postgres instance; set TEST_DB_DSN to enable
// them, e.g. "host=localhost user=app password=app dbname=app_test sslmode=disable".
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, conn.Ping())

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			ctime BIGINT NOT NULL,
			mtime BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			chunk_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			chunk TEXT NOT NULL,
			is_embedded BOOLEAN NOT NULL DEFAULT FALSE,
			metadata JSONB,
			ctime BIGINT NOT NULL,
			mtime BIGINT NOT NULL
		)`,
	} {
		_, err := conn.Exec(stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec("DELETE FROM chunks")
		_, _ = conn.Exec("DELETE FROM users")
		_ = conn.Close()
	})
	return conn
}

func uniqueID(t *testing.T, prefix string) string {
	t.Helper()
	return fmt.Sprintf("%s-%s", prefix, t.Name())
}
