package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"zonerouter/internal/api/dto"
	"zonerouter/internal/orchestrator"
)

// ZonesHandler exposes POST /zones (generate_zones, spec §6).
type ZonesHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

func (h *ZonesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.GenerateZonesRequest
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
	if city == "" {
		writeError(w, r, http.StatusBadRequest, "city is required")
		return
	}

	result, runID, err := h.Orchestrator.GenerateZones(r.Context(), orchestrator.GenerateZonesRequest{
		City:                city,
		Method:              req.Method,
		TargetZones:         req.TargetZones,
		RotationOffset:      req.RotationOffset,
		Thresholds:          req.Thresholds,
		MaxCustomersPerZone: req.MaxCustomersPerZone,
		Tolerance:           req.Tolerance,
		DepotWeighting:      req.DepotWeighting,
		Polygons:            req.ToManualPolygons(),
		Balance:             req.Balance,
		BalanceTolerance:    req.BalanceTolerance,
		Seed:                req.Seed,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	counts := result.Counts()
	countDTOs := make([]dto.ZoneCountDTO, 0, len(counts))
	for _, c := range counts {
		countDTOs = append(countDTOs, dto.ZoneCountDTO{ZoneID: c.ZoneID, Count: c.Count})
	}

	writeJSON(w, r, http.StatusOK, dto.GenerateZonesResponse{
		RunID:       runID,
		City:        result.City,
		Method:      result.Method,
		Assignments: result.Assignments,
		Counts:      countDTOs,
		Metadata:    result.Metadata,
	})
}
