package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatscope-app/chatscope/internal/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(h *Handler, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware first to capture all requests.
	r.Use(metricsMiddleware)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", h.Upload)
		r.Get("/analysis", h.Analysis)
		r.Get("/refresh", h.Refresh)
		r.Get("/current_file", h.CurrentFile)
		r.Get("/search", h.Search)
		r.Get("/context", h.Context)
		r.Get("/day_analysis", h.DayAnalysis)
		r.Get("/messages_by_hour", h.MessagesByHour)
		r.Post("/chat/ask", h.AskAI)
	})

	return r
}

// NewServer wraps the router in an http.Server with the configured timeouts.
func NewServer(h *Handler, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         h.cfg.Server.Addr,
		Handler:      NewRouter(h, log),
		ReadTimeout:  h.cfg.Server.ReadTimeout,
		WriteTimeout: h.cfg.Server.WriteTimeout,
	}
}
