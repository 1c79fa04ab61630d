// Package orchestrator is the transport-agnostic façade over the core
// operations (spec §2 item 8): generate_zones, optimize_routes, list_runs,
// fetch_export, probe_matrix. It holds the matrix provider and run store as
// process-wide collaborators and dispatches zoning strategies by name,
// mirroring the composition-root role the teacher gives its handlers.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"time"

	"zonerouter/internal/adapters/zoning"
	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/platform/obs"
	"zonerouter/internal/ports"
)

// Config carries the env-style defaults from spec §6.
type Config struct {
	WorkingDays             []string
	SolverTimeLimitSeconds  int
	BalanceToleranceDefault float64
}

// Orchestrator wires the core ports together and exposes the five
// transport-agnostic operations.
type Orchestrator struct {
	Loader     ports.DatasetLoader
	Matrix     ports.MatrixProvider
	Solver     ports.RoutingSolver
	RunStore   ports.RunStore
	Strategies map[string]ports.ZoningStrategy
	Config     Config
}

// New builds an Orchestrator with the four built-in zoning strategies
// registered by method name.
func New(loader ports.DatasetLoader, matrix ports.MatrixProvider, solver ports.RoutingSolver, runStore ports.RunStore, cfg Config) *Orchestrator {
	if len(cfg.WorkingDays) == 0 {
		cfg.WorkingDays = []string{"SUN", "MON", "TUE", "WED", "THU", "FRI"}
	}
	if cfg.BalanceToleranceDefault <= 0 {
		cfg.BalanceToleranceDefault = 0.20
	}

	return &Orchestrator{
		Loader:   loader,
		Matrix:   matrix,
		Solver:   solver,
		RunStore: runStore,
		Strategies: map[string]ports.ZoningStrategy{
			"polar":      zoning.Polar{},
			"isochrone":  zoning.Isochrone{},
			"clustering": zoning.Clustering{},
			"manual":     zoning.Manual{},
		},
		Config: cfg,
	}
}

// GenerateZonesRequest is the generate_zones input (spec §6).
type GenerateZonesRequest struct {
	City                string
	Method              string
	TargetZones         int
	RotationOffset      float64
	Thresholds          []float64
	MaxCustomersPerZone int
	Tolerance           float64
	DepotWeighting      bool
	Polygons            []ports.ManualPolygon
	Balance             bool
	BalanceTolerance    float64
	Seed                int64
}

// GenerateZones dispatches to the requested strategy, optionally balances
// the result, and persists it. Returns the result and the new run id.
func (o *Orchestrator) GenerateZones(ctx context.Context, req GenerateZonesRequest) (result domain.ZoningResult, runID string, err error) {
	defer obs.Time(ctx, "orchestrator.GenerateZones")(&err)

	strategy, ok := o.Strategies[req.Method]
	if !ok {
		return domain.ZoningResult{}, "", apperr.New(apperr.KindInvalidInput, "orchestrator.GenerateZones",
			fmt.Errorf("unknown zoning method %q", req.Method))
	}

	customers, err := o.Loader.CustomersByCity(req.City, "")
	if err != nil {
		return domain.ZoningResult{}, "", apperr.New(apperr.KindNotFound, "orchestrator.GenerateZones", err)
	}
	if len(customers) == 0 {
		return domain.ZoningResult{}, "", apperr.New(apperr.KindNotFound, "orchestrator.GenerateZones",
			fmt.Errorf("no customers found for city %q", req.City))
	}

	depot, err := o.Loader.Depot(req.City)
	if err != nil {
		return domain.ZoningResult{}, "", apperr.New(apperr.KindNotFound, "orchestrator.GenerateZones", err)
	}

	zreq := ports.ZoningRequest{
		City:           req.City,
		DepotCityCode3: depot.CityCode,
		Customers:      customers,
		Depot:          depot,
		TargetZones:    req.TargetZones,
		RotationOffset: req.RotationOffset,
		Thresholds:     req.Thresholds,
		MaxPerZone:     req.MaxCustomersPerZone,
		Tolerance:      req.Tolerance,
		DepotWeighting: req.DepotWeighting,
		Seed:           req.Seed,
		ManualPolygons: req.Polygons,
	}

	result, err = strategy.Generate(ctx, zreq, o.Matrix)
	if err != nil {
		return domain.ZoningResult{}, "", err
	}

	if req.Balance {
		tolerance := req.BalanceTolerance
		if tolerance <= 0 {
			tolerance = o.Config.BalanceToleranceDefault
		}
		result, _ = zoning.Balance(result, customers, depot, tolerance)
	}

	runID, err = o.RunStore.WriteZoningRun(result)
	if err != nil {
		return result, "", apperr.New(apperr.KindInternal, "orchestrator.GenerateZones", err)
	}

	return result, runID, nil
}

// OptimizeRoutesRequest is the optimize_routes input (spec §6).
type OptimizeRoutesRequest struct {
	City             string
	ZoneID           string
	CustomerIDs      []string
	Constraints      ports.RouteConstraints
	RouteAssignments []ports.RouteAssignment
	Persist          bool
	Seed             int64
	TimeBudget       time.Duration
}

// OptimizeRoutes solves a zone's customers into day-indexed stop sequences
// and, when requested, persists the result.
func (o *Orchestrator) OptimizeRoutes(ctx context.Context, req OptimizeRoutesRequest) (result domain.RoutingResult, runID string, err error) {
	defer obs.Time(ctx, "orchestrator.OptimizeRoutes")(&err)

	customers, err := o.Loader.CustomersByCity(req.City, req.ZoneID)
	if err != nil {
		return domain.RoutingResult{}, "", apperr.New(apperr.KindNotFound, "orchestrator.OptimizeRoutes", err)
	}
	if len(req.CustomerIDs) > 0 {
		customers = filterByID(customers, req.CustomerIDs)
	}
	if len(customers) == 0 {
		return domain.RoutingResult{}, "", apperr.New(apperr.KindNotFound, "orchestrator.OptimizeRoutes",
			fmt.Errorf("no customers found for city %q zone %q", req.City, req.ZoneID))
	}

	depot, err := o.Loader.Depot(req.City)
	if err != nil {
		return domain.RoutingResult{}, "", apperr.New(apperr.KindNotFound, "orchestrator.OptimizeRoutes", err)
	}

	timeBudget := req.TimeBudget
	if timeBudget <= 0 {
		timeBudget = time.Duration(o.Config.SolverTimeLimitSeconds) * time.Second
	}

	sreq := ports.SolveRequest{
		ZoneID:      req.ZoneID,
		Customers:   customers,
		Depot:       depot,
		Constraints: req.Constraints,
		WorkingDays: o.Config.WorkingDays,
		Assignments: req.RouteAssignments,
		TimeBudget:  timeBudget,
		Seed:        req.Seed,
	}

	result, err = o.Solver.Solve(ctx, sreq, o.Matrix)
	if err != nil {
		return domain.RoutingResult{}, "", err
	}

	if !req.Persist {
		return result, "", nil
	}

	runID, err = o.RunStore.WriteRoutingRun(result)
	if err != nil {
		return result, "", apperr.New(apperr.KindInternal, "orchestrator.OptimizeRoutes", err)
	}

	return result, runID, nil
}

// ListRuns implements list_runs.
func (o *Orchestrator) ListRuns(filters ports.RunFilters) ([]ports.RunManifest, error) {
	return o.RunStore.List(filters)
}

// FetchExport implements fetch_export, streaming a file from within a run.
func (o *Orchestrator) FetchExport(runID, fileName string) (io.ReadCloser, error) {
	rc, err := o.RunStore.Fetch(runID, fileName)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "orchestrator.FetchExport", err)
	}
	return rc, nil
}

// ProbeMatrix implements probe_matrix.
func (o *Orchestrator) ProbeMatrix(ctx context.Context) bool {
	return o.Matrix.Probe(ctx)
}

func filterByID(customers []domain.Customer, ids []string) []domain.Customer {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	out := make([]domain.Customer, 0, len(ids))
	for _, c := range customers {
		if wanted[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
