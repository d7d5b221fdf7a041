package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
)

type requestIDKey struct{}

// maxRequestIDLength caps ids accepted from clients.
const maxRequestIDLength = 128

// RequestID makes sure every request carries X-Request-Id. A client-provided
// id is kept; otherwise a new UUID is generated. The id is echoed in the
// response and stored in the request header and context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(svcErr.RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
				r.Header.Set(svcErr.RequestIDHeader, id)
			}
			w.Header().Set(svcErr.RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom returns the id set by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
