// Package handler exposes the recommender over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/middleware"
)

type RouterConfig struct {
	AllowedOrigins    []string
	RefreshRateLimit  int
	RefreshRateWindow time.Duration
	RequestTimeout    time.Duration
	Metrics           *metrics.Metrics
	Checker           *health.Checker
	Analytics         *analytics.Handler
}

// NewRouter wires the recommender routes. CORS runs ahead of routing so
// preflight requests are answered; /refresh is rate limited per client IP.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Post("/predict", h.Predict)
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		if cfg.RefreshRateLimit > 0 {
			r.Use(httprate.Limit(
				cfg.RefreshRateLimit,
				cfg.RefreshRateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(h.refreshRateLimited),
			))
		}
		r.Post("/refresh", h.Refresh)
	})

	if cfg.Checker != nil {
		r.Get("/health/live", cfg.Checker.LiveHandler())
		r.Get("/health/ready", cfg.Checker.ReadyHandler())
	}
	if cfg.Analytics != nil {
		r.Get("/api/v1/analytics", cfg.Analytics.Stats)
		r.Get("/api/v1/analytics/history", cfg.Analytics.History)
	}
	return r
}
