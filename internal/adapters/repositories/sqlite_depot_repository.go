package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
)

// SqliteDepotRepository implements ports.DepotRepository against a SQLite
// database, adapted from the teacher's SqlitePackageRepository.
type SqliteDepotRepository struct{ DB *sql.DB }

// NewSqliteDepotRepository wraps db. Callers must have already run InitSchema.
func NewSqliteDepotRepository(db *sql.DB) *SqliteDepotRepository {
	return &SqliteDepotRepository{DB: db}
}

func (s *SqliteDepotRepository) Depot(ctx context.Context, cityCode string) (domain.Depot, error) {
	if s.DB == nil {
		return domain.Depot{}, errors.New("sqlite depot repository: DB is nil")
	}

	const q = `SELECT city_code, lat, lon FROM depots WHERE city_code = ?;`
	row := s.DB.QueryRowContext(ctx, q, cityCode)

	var d domain.Depot
	if err := row.Scan(&d.CityCode, &d.Coords.Lat, &d.Coords.Lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Depot{}, apperr.New(apperr.KindNotFound, "sqliteDepotRepository.Depot", err)
		}
		return domain.Depot{}, fmt.Errorf("depot: scan row: %w", err)
	}

	return d, nil
}

func (s *SqliteDepotRepository) ListDepots(ctx context.Context) ([]domain.Depot, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite depot repository: DB is nil")
	}

	const q = `SELECT city_code, lat, lon FROM depots ORDER BY city_code;`
	rows, err := s.DB.QueryContext(ctx, q)
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

func (s *SqliteDepotRepository) UpsertDepot(ctx context.Context, depot domain.Depot) error {
	if s.DB == nil {
		return errors.New("sqlite depot repository: DB is nil")
	}

	const q = `INSERT OR REPLACE INTO depots (city_code, lat, lon) VALUES (?, ?, ?);`
	if _, err := s.DB.ExecContext(ctx, q, depot.CityCode, depot.Coords.Lat, depot.Coords.Lon); err != nil {
		return fmt.Errorf("upsert depot city_code=%s: %w", depot.CityCode, err)
	}
	return nil
}
