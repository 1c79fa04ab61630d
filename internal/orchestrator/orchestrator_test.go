package orchestrator

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

type fakeLoader struct {
	customers []domain.Customer
	depot     domain.Depot
}

func (f *fakeLoader) CustomersByCity(city, zoneCode string) ([]domain.Customer, error) {
	return f.customers, nil
}
func (f *fakeLoader) Depot(city string) (domain.Depot, error) { return f.depot, nil }
func (f *fakeLoader) Reload() error                           { return nil }

type fakeMatrix struct{}

func (fakeMatrix) Matrix(_ context.Context, points []domain.Coordinates) ([][]float64, [][]float64, bool, error) {
	n := len(points)
	dist := make([][]float64, n)
	dur := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		dur[i] = make([]float64, n)
	}
	return dist, dur, false, nil
}
func (fakeMatrix) Probe(context.Context) bool { return true }

type fakeSolver struct {
	result domain.RoutingResult
}

func (f *fakeSolver) Solve(_ context.Context, _ ports.SolveRequest, _ ports.MatrixProvider) (domain.RoutingResult, error) {
	return f.result, nil
}

type fakeRunStore struct {
	zoningWrites  int
	routingWrites int
}

func (f *fakeRunStore) WriteZoningRun(domain.ZoningResult) (string, error) {
	f.zoningWrites++
	return "zones_test", nil
}
func (f *fakeRunStore) WriteRoutingRun(domain.RoutingResult) (string, error) {
	f.routingWrites++
	return "routes_test", nil
}
func (f *fakeRunStore) List(ports.RunFilters) ([]ports.RunManifest, error) { return nil, nil }
func (f *fakeRunStore) Fetch(string, string) (io.ReadCloser, error)        { return nil, nil }

func testCustomers() []domain.Customer {
	return []domain.Customer{
		{ID: "C1", City: "Jeddah", Coords: domain.Coordinates{Lat: 21.50, Lon: 39.20}},
		{ID: "C2", City: "Jeddah", Coords: domain.Coordinates{Lat: 21.51, Lon: 39.19}},
		{ID: "C3", City: "Jeddah", Coords: domain.Coordinates{Lat: 21.49, Lon: 39.21}},
		{ID: "C4", City: "Jeddah", Coords: domain.Coordinates{Lat: 21.52, Lon: 39.18}},
	}
}

func TestGenerateZonesDispatchesAndPersists(t *testing.T) {
	loader := &fakeLoader{
		customers: testCustomers(),
		depot:     domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.5, Lon: 39.2}},
	}
	runStore := &fakeRunStore{}
	o := New(loader, fakeMatrix{}, &fakeSolver{}, runStore, Config{})

	result, runID, err := o.GenerateZones(context.Background(), GenerateZonesRequest{
		City:        "Jeddah",
		Method:      "polar",
		TargetZones: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "zones_test", runID)
	require.Equal(t, 1, runStore.zoningWrites)
	require.NotEmpty(t, result.Zones)
}

func TestGenerateZonesRejectsUnknownMethod(t *testing.T) {
	loader := &fakeLoader{customers: testCustomers()}
	o := New(loader, fakeMatrix{}, &fakeSolver{}, &fakeRunStore{}, Config{})

	_, _, err := o.GenerateZones(context.Background(), GenerateZonesRequest{City: "Jeddah", Method: "bogus"})
	require.Error(t, err)
}

func TestOptimizeRoutesSkipsPersistenceWhenNotRequested(t *testing.T) {
	loader := &fakeLoader{
		customers: testCustomers(),
		depot:     domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.5, Lon: 39.2}},
	}
	runStore := &fakeRunStore{}
	solver := &fakeSolver{result: domain.RoutingResult{ZoneID: "JED001"}}
	o := New(loader, fakeMatrix{}, solver, runStore, Config{})

	result, runID, err := o.OptimizeRoutes(context.Background(), OptimizeRoutesRequest{
		City:   "Jeddah",
		ZoneID: "JED001",
	})
	require.NoError(t, err)
	require.Empty(t, runID)
	require.Equal(t, 0, runStore.routingWrites)
	require.Equal(t, "JED001", result.ZoneID)
}

func TestOptimizeRoutesPersistsWhenRequested(t *testing.T) {
	loader := &fakeLoader{
		customers: testCustomers(),
		depot:     domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.5, Lon: 39.2}},
	}
	runStore := &fakeRunStore{}
	solver := &fakeSolver{result: domain.RoutingResult{ZoneID: "JED001"}}
	o := New(loader, fakeMatrix{}, solver, runStore, Config{})

	_, runID, err := o.OptimizeRoutes(context.Background(), OptimizeRoutesRequest{
		City:    "Jeddah",
		ZoneID:  "JED001",
		Persist: true,
	})
	require.NoError(t, err)
	require.Equal(t, "routes_test", runID)
	require.Equal(t, 1, runStore.routingWrites)
}

func TestOptimizeRoutesFiltersByExplicitCustomerIDs(t *testing.T) {
	loader := &fakeLoader{
		customers: testCustomers(),
		depot:     domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.5, Lon: 39.2}},
	}
	solver := &fakeSolver{result: domain.RoutingResult{ZoneID: "JED001"}}
	o := New(loader, fakeMatrix{}, solver, &fakeRunStore{}, Config{})

	_, _, err := o.OptimizeRoutes(context.Background(), OptimizeRoutesRequest{
		City:        "Jeddah",
		ZoneID:      "JED001",
		CustomerIDs: []string{"C1", "C2"},
	})
	require.NoError(t, err)
}

func TestProbeMatrixDelegates(t *testing.T) {
	o := New(&fakeLoader{}, fakeMatrix{}, &fakeSolver{}, &fakeRunStore{}, Config{})
	require.True(t, o.ProbeMatrix(context.Background()))
}
