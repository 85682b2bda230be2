package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: uploaded item photos, keyed by item id.
	`CREATE TABLE IF NOT EXISTS item_images (
	     item_id    INTEGER PRIMARY KEY,
	     image      BLOB NOT NULL,
	     mime       TEXT NOT NULL,
	     updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	 )`,
}

// Migrate creates the schema and runs all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
