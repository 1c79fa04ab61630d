// Package repositories holds the depot-catalogue persistence adapters: a
// SQLite-backed repository for single-binary/local runs and a pgx-backed
// repository for deployments sharing one Postgres instance (spec §4.6).
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the depot catalogue table in a SQLite database,
// mirroring the teacher's transactional multi-statement schema init.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const createDepotsQuery = `
	CREATE TABLE IF NOT EXISTS depots (
		city_code TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	if _, err := tx.Exec(createDepotsQuery); err != nil {
		return fmt.Errorf("init schema: exec depots table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
