package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated database file in a per-test temp directory
// through NewDB, so tests run with the same WAL pragmas as production.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "couplemap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = RunMigrations(db.Writer)
	require.NoError(t, err)

	return db
}
