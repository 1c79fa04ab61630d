package runstore

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"zonerouter/internal/domain"
)

// writeZoningAssignments writes one row per customer->zone assignment
// (spec §4.5 assignments.csv columns for zoning runs).
func writeZoningAssignments(dir string, result domain.ZoningResult) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"customer_id", "zone_id"}); err != nil {
		return fmt.Errorf("run store: write zoning assignments header: %w", err)
	}

	for customerID, zoneID := range result.Assignments {
		if err := w.Write([]string{customerID, zoneID}); err != nil {
			return fmt.Errorf("run store: write zoning assignment row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("run store: flush zoning assignments: %w", err)
	}

	return createAndRename(dir, assignmentsFileName, buf.Bytes())
}

// writeRoutingAssignments writes one row per stop across all route plans
// (spec §4.5: "route_id, day, sequence, customer_id, arrival_min,
// distance_from_prev_km").
func writeRoutingAssignments(dir string, result domain.RoutingResult) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"route_id", "day", "sequence", "customer_id", "arrival_min", "distance_from_prev_km"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("run store: write routing assignments header: %w", err)
	}

	for _, plan := range result.Plans {
		for _, stop := range plan.Stops {
			row := []string{
				plan.ID,
				plan.Day,
				strconv.Itoa(stop.Sequence),
				stop.CustomerID,
				strconv.FormatFloat(stop.ArrivalMin, 'f', 2, 64),
				strconv.FormatFloat(stop.DistanceFromPrevKm, 'f', 3, 64),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("run store: write routing assignment row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("run store: flush routing assignments: %w", err)
	}

	return createAndRename(dir, assignmentsFileName, buf.Bytes())
}
