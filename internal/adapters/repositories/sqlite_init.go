package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	createIntakesQuery := `
	CREATE TABLE IF NOT EXISTS intake_records (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		query TEXT NOT NULL,
		consult_type TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		x REAL NOT NULL DEFAULT 0,
		y REAL NOT NULL DEFAULT 0,
		directions_url TEXT NOT NULL DEFAULT '',
		next_url TEXT NOT NULL DEFAULT '',
		created_at_ms INTEGER NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_intake_records_created_at
	ON intake_records(created_at_ms DESC);
	`

	return execSchema(db, createIntakesQuery, createIndexQuery)
}

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	createIntakesQuery := `
	CREATE TABLE IF NOT EXISTS intake_records (
		id UUID PRIMARY KEY,
		session_id TEXT NOT NULL,
		query TEXT NOT NULL,
		consult_type TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		x DOUBLE PRECISION NOT NULL DEFAULT 0,
		y DOUBLE PRECISION NOT NULL DEFAULT 0,
		directions_url TEXT NOT NULL DEFAULT '',
		next_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_intake_records_created_at
	ON intake_records(created_at DESC);
	`

	return execSchema(db, createIntakesQuery, createIndexQuery)
}

func execSchema(db *sql.DB, statements ...string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
