package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the read-mostly HTTP surface over the engine.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games", h.GetGames)
		r.Post("/games", h.IngestGames)
		r.Get("/games/{gameID}/predictions", h.GetPredictionsByGame)
		r.Get("/games/{gameID}/features", h.GetFeatureVector)

		r.Get("/teams/{teamID}/stats", h.GetTeamStat)
		r.Get("/teams/{teamID}/h2h/{opponentID}", h.GetHeadToHead)

		r.Get("/predictions", h.GetPredictionsByDate)

		r.Get("/models", h.ListModels)
		r.Post("/models", h.RegisterModel)
		r.Get("/models/active", h.GetActiveModel)
		r.Post("/models/{modelID}/activate", h.ActivateModel)
		r.Get("/models/{modelID}/metrics", h.GetModelMetrics)

		r.Post("/pipeline/run", h.TriggerPipelineRun)
		r.Get("/quality/status", h.GetQualityStatus)
	})

	return r
}
