package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(LoopbackGuard())

		r.Post("/sequences", sequencesHandler(cfg))
		r.Post("/convert", convertHandler(cfg))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/conversions", listConversionsHandler(cfg))
		r.Get("/conversions/{id}", getConversionHandler(cfg))
		r.Get("/conversions/{id}/csv", conversionCSVHandler(cfg))
		r.Delete("/conversions/{id}", deleteConversionHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
			FPS:     cfg.Converter.DefaultFPS(),
		})
	}
}
