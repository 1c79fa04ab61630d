package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

// DepotSeed is one row of a depot catalogue seed file.
type DepotSeed struct {
	CityCode string  `json:"city_code"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// SeedDepots populates a depot catalogue through the DepotRepository port,
// validating every row before writing any of them (teacher's
// validate-then-insert discipline). Going through the port rather than raw
// SQL keeps this seed logic correct for both the SQLite and pgx backends,
// which use different placeholder syntaxes.
func SeedDepots(ctx context.Context, repo ports.DepotRepository, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed depots: read %q: %w", jsonPath, err)
	}

	var rows []DepotSeed
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("seed depots: parse json: %w", err)
	}

	depots := make([]domain.Depot, 0, len(rows))
	for i, d := range rows {
		cityCode := strings.TrimSpace(d.CityCode)
		if cityCode == "" {
			return fmt.Errorf("seed depots: item at index %d: city_code cannot be empty", i+1)
		}
		if d.Lat < -90 || d.Lat > 90 || d.Lon < -180 || d.Lon > 180 {
			return fmt.Errorf("seed depots: item at index %d: coordinates out of range", i+1)
		}
		depots = append(depots, domain.Depot{
			CityCode: cityCode,
			Coords:   domain.Coordinates{Lat: d.Lat, Lon: d.Lon},
		})
	}

	for _, depot := range depots {
		if err := repo.UpsertDepot(ctx, depot); err != nil {
			return fmt.Errorf("seed depots: upsert city_code=%s: %w", depot.CityCode, err)
		}
	}

	return nil
}
