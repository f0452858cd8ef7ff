package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const annotationsSchema = `
CREATE TABLE IF NOT EXISTS annotations (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// OpenDatabase opens (creating if needed) the annotation database
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(annotationsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create annotations table: %w", err)
	}

	return db, nil
}

func getValue(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow("SELECT value FROM annotations WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	return value, true, nil
}

func setValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(
		"INSERT INTO annotations (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

func deleteValue(db *sql.DB, key string) error {
	if _, err := db.Exec("DELETE FROM annotations WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// listKeys returns all keys matching a LIKE pattern, ordered
func listKeys(db *sql.DB, pattern string) ([]string, error) {
	rows, err := db.Query("SELECT key FROM annotations WHERE key LIKE ? ORDER BY key", pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
