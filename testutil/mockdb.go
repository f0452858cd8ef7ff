package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the
// annotations schema for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS annotations (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create annotations table: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// SeedValue inserts one key/value row into the annotations table
func SeedValue(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec(
		"INSERT INTO annotations (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	); err != nil {
		t.Fatalf("Failed to seed %s: %v", key, err)
	}
}

// ReadValue reads one value from the annotations table; the bool
// reports whether the key exists
func ReadValue(t *testing.T, db *sql.DB, key string) (string, bool) {
	t.Helper()
	var value string
	err := db.QueryRow("SELECT value FROM annotations WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", key, err)
	}
	return value, true
}
