// Package http assembles the REST API: chi router, middleware chain and
// route table.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/vibecheck/internal/config"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/transport/http/handlers"
	"github.com/oggyb/vibecheck/internal/transport/http/middleware"
)

// Options configures the router.
type Options struct {
	Logger *slog.Logger
	HTTP   config.HTTPConfig
	// Enforce requires a session on every route except health, metrics,
	// registration, login and profile creation.
	Enforce bool
	// Ready backs /healthz; nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter builds the http.Handler for the REST API.
func NewRouter(svc handlers.Services, opts Options) http.Handler {
	r := chi.NewRouter()

	// outermost first
	r.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.CORS(opts.HTTP.CORSOrigins),
		middleware.RateLimit(opts.HTTP.RateLimit, opts.HTTP.RateWindow),
	)
	if svc.Auth != nil {
		r.Use(middleware.Session(svc.Auth))
	}
	r.Use(
		middleware.Timeout(opts.HTTP.RequestTimeout),
		middleware.Metrics(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		svcErr.WriteError(w, r, svcErr.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":{"code":"method_not_allowed","message":"method not allowed"}}` + "\n"))
	})

	h := handlers.New(svc, opts.Ready)
	registerRoutes(r, h, opts.Enforce)
	return r
}

// registerRoutes is the single place where REST endpoints are declared.
func registerRoutes(r chi.Router, h *handlers.Handlers, enforce bool) {
	// public
	r.Get("/livez", h.Live)
	r.Get("/healthz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Post("/users", h.CreateUser)

	r.Group(func(r chi.Router) {
		if enforce {
			r.Use(middleware.RequireSession())
		}

		// profiles
		r.Get("/users/by-username/{username}", h.GetUserByUsername)
		r.Get("/users/{id}", h.GetUser)
		r.Patch("/users/{id}", h.UpdateUser)
		r.Delete("/users/{id}", h.DeleteUser)
		r.Post("/users/{id}/photos/presign", h.PresignPhoto)

		// swipes and matches
		r.Post("/swipe", h.Swipe)
		r.Get("/discover/{userId}", h.Discover)
		r.Get("/matches/{id}", h.ListMatches)
		r.Get("/users/{id}/admirers", h.ListAdmirers)
		r.Get("/users/{id}/admirers/count", h.CountAdmirers)

		// messages
		r.Post("/matches/{id}/messages", h.SendMessage)
		r.Get("/matches/{id}/messages", h.ListMessages)

		// connections
		r.Post("/connections", h.RequestConnection)
		r.Patch("/connections/{id}", h.RespondConnection)
		r.Get("/users/{id}/connections", h.ListConnections)

		// providers
		r.Get("/providers/spotify/search", h.SpotifySearch)
		r.Get("/providers/genius/search", h.GeniusSearch)
	})
}
