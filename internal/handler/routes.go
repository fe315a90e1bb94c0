package handler

import (
	"log/slog"
	"net/http"

	"documite/internal/config"
	"documite/internal/metrics"
	"documite/internal/middleware"
)

// Deps bundles everything the routes need.
type Deps struct {
	Config       *config.Config
	DB           Pinger
	Verifier     middleware.TokenVerifier
	Resolver     ClaimsResolver
	Users        UserGetter
	Documents    DocumentService
	Reservations ReservationService
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// RegisterRoutes registers all HTTP routes with the provided mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	authed := middleware.RequireAuth(d.Verifier, logger)

	// Health, status and metrics endpoints (no auth required)
	mux.HandleFunc("GET /health", HealthCheck)
	mux.HandleFunc("GET /ready", readyHandler(d.DB, logger))
	mux.HandleFunc("GET /api/v1/status", statusHandler(d.Config))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	me := NewMeHandler(d.Resolver, d.Users, logger)
	mux.Handle("GET /api/v1/me", authed(http.HandlerFunc(me.Get)))

	docs := NewDocumentsHandler(d.Documents, logger)
	mux.Handle("GET /api/v1/documents", authed(http.HandlerFunc(docs.ListByType)))
	mux.Handle("GET /api/v1/documents/by-name", authed(http.HandlerFunc(docs.ListByName)))
	mux.Handle("POST /getdocuments", authed(http.HandlerFunc(docs.Search)))

	res := NewReservationsHandler(d.Reservations, logger, nil)
	mux.Handle("GET /api/v1/reservations", authed(http.HandlerFunc(res.List)))
	mux.Handle("POST /reservations", authed(http.HandlerFunc(res.Search)))

	// Register without method so other methods get a JSON 405 instead of the default text one
	mux.HandleFunc("/getdocuments", methodNotAllowedHandler("POST"))
	mux.HandleFunc("/reservations", methodNotAllowedHandler("POST"))
}
