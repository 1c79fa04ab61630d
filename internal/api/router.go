// Package api is the thin HTTP realization of the five transport-agnostic
// core operations (spec §6). Out of scope for correctness per spec §1, but
// carried so the orchestrator is reachable end-to-end.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"zonerouter/internal/api/handlers"
	"zonerouter/internal/orchestrator"
)

// NewRouter wires HTTP handlers to the orchestrator and returns an
// http.Handler. This is the API composition root; handlers stay unaware of
// concrete adapters.
func NewRouter(o *orchestrator.Orchestrator, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	r.Use(corsHandler.Handler)

	zonesHandler := &handlers.ZonesHandler{Orchestrator: o}
	routesHandler := &handlers.RoutesHandler{Orchestrator: o}
	runsHandler := &handlers.RunsHandler{Orchestrator: o}
	matrixHandler := &handlers.MatrixHandler{Orchestrator: o}

	r.Get("/health", handlers.Health)
	r.Post("/zones", zonesHandler.Generate)
	r.Post("/routes", routesHandler.Optimize)
	r.Get("/matrix/probe", matrixHandler.Probe)
	r.Get("/runs", runsHandler.List)
	r.Get("/runs/{id}/{file}", runsHandler.Fetch)

	return r
}
