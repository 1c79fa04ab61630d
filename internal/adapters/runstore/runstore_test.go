package runstore

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

func newTestStore(t *testing.T) *FilesystemRunStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFilesystemRunStore(dir)
	require.NoError(t, err)
	return s
}

func sampleZoningResult() domain.ZoningResult {
	return domain.ZoningResult{
		City:   "Jeddah",
		Method: "polar",
		Assignments: map[string]string{
			"C1": "JED001",
			"C2": "JED002",
		},
		Zones: []domain.Zone{
			{ID: "JED001", CustomerIDs: []string{"C1"}},
			{ID: "JED002", CustomerIDs: []string{"C2"}},
		},
	}
}

func sampleRoutingResult() domain.RoutingResult {
	return domain.RoutingResult{
		ZoneID:   "JED001",
		Metadata: map[string]any{"status": string(domain.StatusOptimal)},
		Plans: []domain.Route{
			{
				ID:  "JED001_R01",
				Day: "SUN",
				Stops: []domain.Stop{
					{CustomerID: "C1", Sequence: 1, ArrivalMin: 12.5, DistanceFromPrevKm: 8.2},
					{CustomerID: "C2", Sequence: 2, ArrivalMin: 20.0, DistanceFromPrevKm: 5.1},
				},
				TotalDistanceKm:  13.3,
				TotalDurationMin: 20.0,
			},
		},
	}
}

func TestWriteZoningRunProducesSummaryAndAssignments(t *testing.T) {
	s := newTestStore(t)

	runID, err := s.WriteZoningRun(sampleZoningResult())
	require.NoError(t, err)
	require.Contains(t, runID, "zones_")

	summaryPath := filepath.Join(s.root, runID, summaryFileName)
	require.FileExists(t, summaryPath)

	assignmentsPath := filepath.Join(s.root, runID, assignmentsFileName)
	require.FileExists(t, assignmentsPath)

	data, err := os.ReadFile(assignmentsPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "customer_id,zone_id")
	require.Contains(t, string(data), "C1,JED001")
}

func TestWriteRoutingRunProducesAssignmentsWithExpectedColumns(t *testing.T) {
	s := newTestStore(t)

	runID, err := s.WriteRoutingRun(sampleRoutingResult())
	require.NoError(t, err)
	require.Contains(t, runID, "routes_")

	data, err := os.ReadFile(filepath.Join(s.root, runID, assignmentsFileName))
	require.NoError(t, err)
	require.Contains(t, string(data), "route_id,day,sequence,customer_id,arrival_min,distance_from_prev_km")
	require.Contains(t, string(data), "JED001_R01,SUN,1,C1,12.50,8.200")
}

func TestAllocateRunIDDisambiguatesSameSecondCollisions(t *testing.T) {
	s := newTestStore(t)
	frozen := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	first, err := s.WriteZoningRun(sampleZoningResult())
	require.NoError(t, err)

	second, err := s.WriteZoningRun(sampleZoningResult())
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Contains(t, second, first+"_")
}

func TestListSkipsCorruptRunDirectories(t *testing.T) {
	s := newTestStore(t)

	_, err := s.WriteZoningRun(sampleZoningResult())
	require.NoError(t, err)

	corrupt := filepath.Join(s.root, "zones_corrupt")
	require.NoError(t, os.MkdirAll(corrupt, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(corrupt, summaryFileName), []byte("not json"), 0o644))

	manifests, err := s.List(ports.RunFilters{})
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	require.Equal(t, "Jeddah", manifests[0].City)
}

func TestListFiltersByTypeAndCity(t *testing.T) {
	s := newTestStore(t)

	_, err := s.WriteZoningRun(sampleZoningResult())
	require.NoError(t, err)
	_, err = s.WriteRoutingRun(sampleRoutingResult())
	require.NoError(t, err)

	zonesOnly, err := s.List(ports.RunFilters{Type: string(domain.RunTypeZones)})
	require.NoError(t, err)
	require.Len(t, zonesOnly, 1)

	byCity, err := s.List(ports.RunFilters{City: "jeddah"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)

	noMatch, err := s.List(ports.RunFilters{City: "riyadh"})
	require.NoError(t, err)
	require.Empty(t, noMatch)
}

func TestFetchStreamsAssignmentsFile(t *testing.T) {
	s := newTestStore(t)
	runID, err := s.WriteZoningRun(sampleZoningResult())
	require.NoError(t, err)

	rc, err := s.Fetch(runID, assignmentsFileName)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Contains(t, string(data), "customer_id,zone_id")
}

func TestFetchRejectsPathEscape(t *testing.T) {
	s := newTestStore(t)
	runID, err := s.WriteZoningRun(sampleZoningResult())
	require.NoError(t, err)

	_, err = s.Fetch(runID, "../../etc/passwd")
	require.Error(t, err)

	_, err = s.Fetch(runID, "../sibling/summary.json")
	require.Error(t, err)
}

func TestFetchRejectsRunIDWithPathSeparators(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Fetch("../escape", summaryFileName)
	require.Error(t, err)
}
