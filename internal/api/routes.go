package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/reading-plan/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/plans
//	POST   /api/v1/plans                          (X-API-Key)
//	GET    /api/v1/plans/{planID}
//	DELETE /api/v1/plans/{planID}                 (X-API-Key)
//	GET    /api/v1/plans/{planID}/days?start=&end=
//	GET    /api/v1/plans/{planID}/days/{index}
//	GET    /api/v1/plans/{planID}/date/{date}
//	GET    /api/v1/plans/{planID}/today
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1/plans", func(r chi.Router) {
		r.Get("/", handlers.ListPlans)
		r.With(AuthMiddleware(cfg, logger)).Post("/", handlers.CreatePlan)

		r.Route("/{planID}", func(r chi.Router) {
			r.Get("/", handlers.GetPlan)
			r.With(AuthMiddleware(cfg, logger)).Delete("/", handlers.DeletePlan)
			r.Get("/days", handlers.GetDays)
			r.Get("/days/{index}", handlers.GetDay)
			r.Get("/date/{date}", handlers.GetDateDay)
			r.Get("/today", handlers.GetToday)
		})
	})

	return r
}
