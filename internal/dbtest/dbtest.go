// Package dbtest opens migrated SQLite databases for store-backed tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"social-service/internal/db"
)

// DSN returns a SQLite DSN for a file inside dir.
func DSN(dir string) string {
	return "file:" + filepath.Join(dir, "social.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}

// Open returns a freshly migrated database that is closed when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	conn, err := db.Connect(db.DriverSQLite, DSN(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}
