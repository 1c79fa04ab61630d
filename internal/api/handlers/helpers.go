package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"zonerouter/internal/apperr"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeAppError translates an apperr.Kind to a transport status exactly
// once at the handler boundary (spec §7 policy), falling back to 500 for
// errors that didn't come through apperr.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case apperr.Is(err, apperr.KindInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case apperr.Is(err, apperr.KindNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case apperr.Is(err, apperr.KindUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	case apperr.Is(err, apperr.KindInfeasible):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case apperr.Is(err, apperr.KindTimeout):
		status, msg = http.StatusGatewayTimeout, err.Error()
	default:
		log.Printf("internal error: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}

	writeError(w, r, status, msg)
}
