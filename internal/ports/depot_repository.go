package ports

import (
	"context"

	"zonerouter/internal/domain"
)

// DepotRepository is a read/write boundary over a shared depot catalogue,
// used by deployments that keep depots in a database rather than a flat
// file (spec §4.6). cmd/dbtool seeds it; SqliteDepotRepository and
// PgxDepotRepository both implement it.
type DepotRepository interface {
	// Depot returns the depot registered for a city code.
	Depot(ctx context.Context, cityCode string) (domain.Depot, error)

	// ListDepots returns every depot in the catalogue.
	ListDepots(ctx context.Context) ([]domain.Depot, error)

	// UpsertDepot inserts or replaces a depot's coordinates.
	UpsertDepot(ctx context.Context, depot domain.Depot) error
}
