// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/forexfactory/site/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated database stored under t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "site_test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
