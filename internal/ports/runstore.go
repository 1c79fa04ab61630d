package ports

import (
	"io"

	"zonerouter/internal/domain"
)

// RunManifest summarizes a persisted run for list_runs (spec §4.5, §6).
type RunManifest struct {
	ID         string
	Type       domain.RunType
	City       string
	Method     string
	ZoneCount  int
	RouteCount int
	Status     string
	CreatedAt  string
	Author     string
	Tags       []string
}

// RunFilters narrows list_runs results.
type RunFilters struct {
	Type   string
	City   string
	Zone   string
	Search string
	Limit  int
}

// RunStore writes each completed core operation to a timestamped directory
// and serves it back (spec §4.5). Owns a write-root path and uses per-run
// directories so two writers never touch the same file.
type RunStore interface {
	// WriteZoningRun persists a zoning result and returns the new run id.
	WriteZoningRun(result domain.ZoningResult) (string, error)

	// WriteRoutingRun persists a routing result and returns the new run id.
	WriteRoutingRun(result domain.RoutingResult) (string, error)

	// List enumerates persisted runs, skipping unreadable directories.
	List(filters RunFilters) ([]RunManifest, error)

	// Fetch streams a file from within a run directory.
	Fetch(runID, fileName string) (io.ReadCloser, error)
}
