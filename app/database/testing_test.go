package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := Open(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	require.False(t, dirty)

	return db
}

func createTestSource(t *testing.T, repo *SourceRepo, name, feedURL string) *Source {
	t.Helper()

	source, err := repo.CreateSource(context.Background(), Source{Name: name, FeedURL: feedURL})
	require.NoError(t, err)
	return source
}
