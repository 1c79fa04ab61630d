package matrix

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zonerouter/internal/domain"
)

// SQLiteCache is a SQLite-backed cache for origin->destination distance and
// duration pairs, keyed by quantized coordinates and routing profile.
// Adapted from the teacher's SqliteDistanceCache: address keys become
// quantized coordinate-pair keys since the core works in coordinates, not
// addresses.
type SQLiteCache struct {
	DB      *sql.DB
	Profile string
}

// NewSQLiteCache wraps db. Callers must have already run InitSchema.
func NewSQLiteCache(db *sql.DB, profile string) *SQLiteCache {
	return &SQLiteCache{DB: db, Profile: profile}
}

// InitSchema creates the matrix_cache table if it doesn't already exist.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init matrix cache schema: DB is nil")
	}

	const q = `
	CREATE TABLE IF NOT EXISTS matrix_cache (
		profile TEXT NOT NULL,
		origin_key TEXT NOT NULL,
		dest_key TEXT NOT NULL,
		distance_km REAL NOT NULL,
		duration_min REAL NOT NULL,
		PRIMARY KEY (profile, origin_key, dest_key)
	);`

	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init matrix cache schema: %w", err)
	}
	return nil
}

func coordKey(c domain.Coordinates) string {
	// 5 decimal places ~ 1.1m precision, enough to dedupe repeated customers.
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// PutBlock writes every non-diagonal pair within blk to the cache.
func (c *SQLiteCache) PutBlock(ctx context.Context, points []domain.Coordinates, blk block, dist, dur [][]float64) error {
	if c.DB == nil {
		return errors.New("matrix cache: db is nil")
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("matrix cache put block: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO matrix_cache (profile, origin_key, dest_key, distance_km, duration_min)
	VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("matrix cache put block: prepare: %w", err)
	}
	defer stmt.Close()

	for i := blk.rowStart; i < blk.rowEnd; i++ {
		for j := blk.colStart; j < blk.colEnd; j++ {
			if i == j {
				continue
			}
			if _, err := stmt.ExecContext(
				ctx, c.Profile, coordKey(points[i]), coordKey(points[j]), dist[i][j], dur[i][j],
			); err != nil {
				return fmt.Errorf("matrix cache put block: exec: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("matrix cache put block: commit: %w", err)
	}
	return nil
}

// Get fetches a single cached origin->destination pair, if present.
func (c *SQLiteCache) Get(ctx context.Context, origin, dest domain.Coordinates) (distKm, durMin float64, ok bool, err error) {
	if c.DB == nil {
		return 0, 0, false, errors.New("matrix cache: db is nil")
	}

	const q = `
	SELECT distance_km, duration_min FROM matrix_cache
	WHERE profile = ? AND origin_key = ? AND dest_key = ?;
	`
	row := c.DB.QueryRowContext(ctx, q, c.Profile, coordKey(origin), coordKey(dest))
	if err := row.Scan(&distKm, &durMin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("matrix cache get: %w", err)
	}
	return distKm, durMin, true, nil
}
