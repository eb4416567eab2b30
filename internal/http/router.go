package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	API   *APIHandler
	Views *ViewHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// RequestObserver receives per-route latency when set.
	RequestObserver requestObserver
	// Health backs /healthz; nil always reports healthy.
	Health         func(ctx context.Context) error
	AllowedOrigins []string
	Logger         *slog.Logger
	Middleware     []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	responder := newResponder(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestObserver != nil {
		r.Use(RequestMetrics(cfg.RequestObserver))
	}
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responder.writeError(req.Context(), w, http.StatusNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responder.writeError(req.Context(), w, http.StatusMethodNotAllowed, nil)
	})

	if cfg.Views != nil {
		r.Get("/", cfg.Views.Overview)
		r.Get("/reserve", cfg.Views.ReserveForm)
		r.Post("/reserve", cfg.Views.SubmitReservation)
		r.Get("/lookup", cfg.Views.LookupForm)
		r.Post("/lookup", cfg.Views.SubmitLookup)
	}

	if cfg.API != nil {
		origins := cfg.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Route("/api", func(api chi.Router) {
			api.Use(cors.Handler(cors.Options{
				AllowedOrigins: origins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
				MaxAge:         300,
			}))
			api.Use(middleware.Timeout(15 * time.Second))

			api.Get("/rooms", cfg.API.ListRooms)
			api.Get("/rooms/{roomID}/timeline", cfg.API.RoomTimeline)
			api.Get("/reservations", cfg.API.ListReservations)
			api.Post("/reservations", cfg.API.CreateReservation)
			api.Post("/reservations/lookup", cfg.API.FindReservations)
		})
	}

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(req.Context()); err != nil {
				responder.loggerFor(req.Context()).ErrorContext(req.Context(), "health check failed", "error", err)
				responder.writeJSON(req.Context(), w, http.StatusServiceUnavailable, errorResponse{Message: localizedStatusMessage(http.StatusServiceUnavailable)})
				return
			}
		}
		responder.writeJSON(req.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
