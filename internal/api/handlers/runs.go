package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zonerouter/internal/api/dto"
	"zonerouter/internal/orchestrator"
	"zonerouter/internal/ports"
)

// RunsHandler exposes GET /runs and GET /runs/{id}/{file} (list_runs,
// fetch_export, spec §6).
type RunsHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	filters := ports.RunFilters{
		Type:   q.Get("type"),
		City:   q.Get("city"),
		Zone:   q.Get("zone"),
		Search: q.Get("search"),
	}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filters.Limit = n
		}
	}

	manifests, err := h.Orchestrator.ListRuns(filters)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	out := make([]dto.RunManifestDTO, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.RunManifestDTO{
			ID:         m.ID,
			Type:       string(m.Type),
			City:       m.City,
			Method:     m.Method,
			ZoneCount:  m.ZoneCount,
			RouteCount: m.RouteCount,
			Status:     m.Status,
			CreatedAt:  m.CreatedAt,
			Author:     m.Author,
			Tags:       m.Tags,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}

func (h *RunsHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	runID := chi.URLParam(r, "id")
	fileName := chi.URLParam(r, "file")

	rc, err := h.Orchestrator.FetchExport(runID, fileName)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already written; nothing more we can report to the client.
		return
	}
}

// MatrixHandler exposes GET /matrix/probe (probe_matrix, spec §6).
type MatrixHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

func (h *MatrixHandler) Probe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	healthy := h.Orchestrator.ProbeMatrix(r.Context())
	writeJSON(w, r, http.StatusOK, dto.ProbeMatrixResponse{Healthy: healthy})
}
