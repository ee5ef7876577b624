// Package http assembles the LienPilot REST API.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/internal/interfaces/http/handlers"
)

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers and middleware are skipped.
type RouterConfig struct {
	// Handlers
	NoticeHandler *handlers.NoticeHandler
	HealthHandler *handlers.HealthHandler

	// Middleware
	CORS      Middleware
	Logging   Middleware
	RateLimit Middleware

	// RequestTimeout bounds API handlers; zero disables the bound.
	RequestTimeout time.Duration

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter wires global middleware, the public probes and metrics, and
// the /api/v1 resource groups into a single http.Handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	for _, mw := range []Middleware{cfg.CORS, cfg.Logging, cfg.RateLimit} {
		if mw != nil {
			r.Use(mw)
		}
	}

	// --- Probes ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RequestTimeout > 0 {
			api.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		registerLienRoutes(api, cfg.NoticeHandler)
		registerNoticeRoutes(api, cfg.NoticeHandler)
		registerCollectionRoutes(api, cfg.NoticeHandler)
	})

	return r
}

// registerLienRoutes mounts statute lookups and deadline calculations.
func registerLienRoutes(r chi.Router, h *handlers.NoticeHandler) {
	if h == nil {
		return
	}
	r.Get("/states", h.ListStates)
	r.Route("/lien", func(lr chi.Router) {
		lr.Post("/deadline", h.CalculateDeadline)
		lr.Post("/deadlines", h.CalculateDeadlines)
		lr.Post("/eligibility", h.CheckEligibility)
	})
}

// registerNoticeRoutes mounts notice-of-intent endpoints under /noi.
func registerNoticeRoutes(r chi.Router, h *handlers.NoticeHandler) {
	if h == nil {
		return
	}
	r.Route("/noi", func(nr chi.Router) {
		nr.Post("/advise", h.Advise)
		nr.Post("/letter", h.ComposeLetter)
		nr.Post("/render", h.RenderDocument)
	})
}

// registerCollectionRoutes mounts collections sequences and status exports.
func registerCollectionRoutes(r chi.Router, h *handlers.NoticeHandler) {
	if h == nil {
		return
	}
	r.Post("/sequences", h.GenerateSequence)
	r.Post("/exports", h.Export)
}

//Personal.AI order the ending
