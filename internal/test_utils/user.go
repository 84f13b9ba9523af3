package test_utils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InsertTestUser stores a user row in a SQLite database and returns its id.
func InsertTestUser(t *testing.T, db *sql.DB, email string) int {
	t.Helper()
	result, err := db.Exec(`INSERT INTO users (uid, name, email) VALUES (?, ?, ?)`, uuid.NewString(), "Test User", email)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read test user id: %v", err)
	}
	return int(id)
}

// InsertTestUserPg stores a user row in a PostgreSQL database and returns its id.
func InsertTestUserPg(t *testing.T, db *pgxpool.Pool, email string) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (uid, name, email) VALUES ($1, $2, $3) RETURNING id`,
		uuid.NewString(), "Test User", email).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	return id
}
