// Package legacytest builds legacy SQLite fixtures for tests.
package legacytest

import (
	"testing"

	"github.com/BartekS5/legacysync/pkg/database"
)

// Create writes a SQLite file at path and runs each statement against it.
func Create(t testing.TB, path string, stmts ...string) string {
	t.Helper()
	db, err := database.ConnectSQL(database.DriverSQLite, path)
	if err != nil {
		t.Fatalf("failed to create legacy database: %v", err)
	}
	defer db.Close()

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture statement failed: %v\n%s", err, stmt)
		}
	}
	return path
}
