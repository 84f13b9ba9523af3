package test_utils

import (
	"database/sql"
	"testing"

	"github.com/forgevyn/zenzero/internal/database"
)

// SetupTestDB creates a private in-memory SQLite database with all migrations applied.
// Each call returns a database isolated from the others.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := database.MigrateSQLite(db); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	return db
}
