// Package storetest opens throwaway canonical stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BartekS5/legacysync/internal/store/sqlstore"
)

// NewSQLite returns a migrated SQLite-backed store in t.TempDir(), closed
// when the test ends.
func NewSQLite(t testing.TB) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "canonical.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
