package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
)

// PgxDepotRepository implements ports.DepotRepository against a shared
// Postgres instance, for deployments where several zoning services read the
// same depot catalogue. Backed by database/sql over jackc/pgx/v5/stdlib, the
// same driver registration the teacher's platform/db.Open uses.
type PgxDepotRepository struct{ DB *sql.DB }

// NewPgxDepotRepository wraps db. Callers must have already run
// InitPostgresSchema.
func NewPgxDepotRepository(db *sql.DB) *PgxDepotRepository {
	return &PgxDepotRepository{DB: db}
}

// InitPostgresSchema creates the depot catalogue table in Postgres.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	const q = `
	CREATE TABLE IF NOT EXISTS depots (
		city_code TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init postgres schema: exec depots table: %w", err)
	}
	return nil
}

func (p *PgxDepotRepository) Depot(ctx context.Context, cityCode string) (domain.Depot, error) {
	if p.DB == nil {
		return domain.Depot{}, errors.New("pgx depot repository: DB is nil")
	}

	const q = `SELECT city_code, lat, lon FROM depots WHERE city_code = $1;`
	row := p.DB.QueryRowContext(ctx, q, cityCode)

	var d domain.Depot
	if err := row.Scan(&d.CityCode, &d.Coords.Lat, &d.Coords.Lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Depot{}, apperr.New(apperr.KindNotFound, "pgxDepotRepository.Depot", err)
		}
		return domain.Depot{}, fmt.Errorf("depot: scan row: %w", err)
	}

	return d, nil
}

func (p *PgxDepotRepository) ListDepots(ctx context.Context) ([]domain.Depot, error) {
	if p.DB == nil {
		return nil, errors.New("pgx depot repository: DB is nil")
	}

	const q = `SELECT city_code, lat, lon FROM depots ORDER BY city_code;`
	rows, err := p.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list depots: query depots table: %w", err)
	}
	defer rows.Close()

	depots := make([]domain.Depot, 0, 16)
	for rows.Next() {
		var d domain.Depot
		if err := rows.Scan(&d.CityCode, &d.Coords.Lat, &d.Coords.Lon); err != nil {
			return nil, fmt.Errorf("list depots: scan row: %w", err)
		}
		depots = append(depots, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list depots: row iteration: %w", err)
	}

	return depots, nil
}

func (p *PgxDepotRepository) UpsertDepot(ctx context.Context, depot domain.Depot) error {
	if p.DB == nil {
		return errors.New("pgx depot repository: DB is nil")
	}

	const q = `
	INSERT INTO depots (city_code, lat, lon) VALUES ($1, $2, $3)
	ON CONFLICT (city_code) DO UPDATE SET lat = EXCLUDED.lat, lon = EXCLUDED.lon;
	`
	if _, err := p.DB.ExecContext(ctx, q, depot.CityCode, depot.Coords.Lat, depot.Coords.Lon); err != nil {
		return fmt.Errorf("upsert depot city_code=%s: %w", depot.CityCode, err)
	}
	return nil
}
