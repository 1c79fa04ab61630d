package zoning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"zonerouter/internal/domain"
)

func TestBalanceMovesCustomersIntoToleranceBand(t *testing.T) {
	depot := domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.5, Lon: 39.2}}

	customers := []domain.Customer{
		{ID: "C1", Coords: domain.Coordinates{Lat: 21.51, Lon: 39.21}},
		{ID: "C2", Coords: domain.Coordinates{Lat: 21.52, Lon: 39.22}},
		{ID: "C3", Coords: domain.Coordinates{Lat: 21.53, Lon: 39.23}},
		{ID: "C4", Coords: domain.Coordinates{Lat: 21.54, Lon: 39.24}},
		{ID: "C5", Coords: domain.Coordinates{Lat: 21.55, Lon: 39.25}},
		{ID: "C6", Coords: domain.Coordinates{Lat: 21.30, Lon: 39.00}},
	}

	result := domain.ZoningResult{
		City:   "Jeddah",
		Method: "polar",
		Assignments: map[string]string{
			"C1": "JED001", "C2": "JED001", "C3": "JED001", "C4": "JED001", "C5": "JED001",
			"C6": "JED002",
		},
		Zones: []domain.Zone{
			{ID: "JED001", CustomerIDs: []string{"C1", "C2", "C3", "C4", "C5"}},
			{ID: "JED002", CustomerIDs: []string{"C6"}},
		},
	}

	balanced, transfers := Balance(result, customers, depot, 0.20)

	require.LessOrEqual(t, len(transfers), len(customers))

	counts := map[string]int{}
	for _, zid := range balanced.Assignments {
		counts[zid]++
	}

	avg := float64(len(customers)) / 2
	lower := math.Floor(avg * 0.8)
	upper := math.Ceil(avg * 1.2)
	for zid, n := range counts {
		require.GreaterOrEqualf(t, float64(n), lower, "zone %s under tolerance band", zid)
		require.LessOrEqualf(t, float64(n), upper, "zone %s over tolerance band", zid)
	}
}

func TestBalanceNoOpWhenAlreadyWithinTolerance(t *testing.T) {
	depot := domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.5, Lon: 39.2}}
	customers := []domain.Customer{
		{ID: "C1", Coords: domain.Coordinates{Lat: 21.51, Lon: 39.21}},
		{ID: "C2", Coords: domain.Coordinates{Lat: 21.30, Lon: 39.00}},
	}
	result := domain.ZoningResult{
		Assignments: map[string]string{"C1": "JED001", "C2": "JED002"},
		Zones: []domain.Zone{
			{ID: "JED001", CustomerIDs: []string{"C1"}},
			{ID: "JED002", CustomerIDs: []string{"C2"}},
		},
	}

	_, transfers := Balance(result, customers, depot, 0.20)
	require.Empty(t, transfers)
}
