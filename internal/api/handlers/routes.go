package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"zonerouter/internal/api/dto"
	"zonerouter/internal/orchestrator"
)

// RoutesHandler exposes POST /routes (optimize_routes, spec §6).
type RoutesHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

func (h *RoutesHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRoutesRequest
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	city := strings.TrimSpace(req.City)
	zoneID := strings.TrimSpace(req.ZoneID)
	if city == "" || zoneID == "" {
		writeError(w, r, http.StatusBadRequest, "city and zone_id are required")
		return
	}

	result, runID, err := h.Orchestrator.OptimizeRoutes(r.Context(), orchestrator.OptimizeRoutesRequest{
		City:             city,
		ZoneID:           zoneID,
		CustomerIDs:      req.CustomerIDs,
		Constraints:      req.ToConstraints(),
		RouteAssignments: req.ToAssignments(),
		Persist:          req.Persist,
		Seed:             req.Seed,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	plans := make([]dto.RouteDTO, 0, len(result.Plans))
	for _, p := range result.Plans {
		stops := make([]dto.StopDTO, 0, len(p.Stops))
		for _, s := range p.Stops {
			stops = append(stops, dto.StopDTO{
				CustomerID:         s.CustomerID,
				Sequence:           s.Sequence,
				ArrivalMin:         s.ArrivalMin,
				DistanceFromPrevKm: s.DistanceFromPrevKm,
			})
		}
		plans = append(plans, dto.RouteDTO{
			ID:               p.ID,
			Day:              p.Day,
			Stops:            stops,
			TotalDistanceKm:  p.TotalDistanceKm,
			TotalDurationMin: p.TotalDurationMin,
			Violations:       p.Violations,
		})
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeRoutesResponse{
		RunID:    runID,
		ZoneID:   result.ZoneID,
		Metadata: result.Metadata,
		Plans:    plans,
	})
}
