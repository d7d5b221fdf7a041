package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
)

// CORS allows the given origins ("*" for any) to call the API.
func CORS(origins []string) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", svcErr.RequestIDHeader},
		ExposedHeaders: []string{svcErr.RequestIDHeader},
		MaxAge:         300,
	})
	return c.Handler
}

// RateLimit allows requests per window per client IP. requests <= 0
// disables it.
func RateLimit(requests int, window time.Duration) Middleware {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			svcErr.WriteError(w, r, status.Error(codes.ResourceExhausted, "rate limit exceeded"))
		}),
	)
}
