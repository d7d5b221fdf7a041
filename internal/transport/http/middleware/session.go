package middleware

import (
	"context"
	"net/http"
	"strings"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/logger"
	"github.com/oggyb/vibecheck/internal/service/auth"
)

// Authenticator resolves a bearer token to a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

type sessionKey struct{}
type tokenKey struct{}

// Session authenticates the bearer token when one is sent and stores the
// session in the context. Requests without a token pass through
// anonymously; a token that does not authenticate is rejected.
func Session(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := a.Authenticate(r.Context(), token)
			if err != nil {
				svcErr.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			ctx = logger.Into(ctx, logger.From(ctx).With("user", sess.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFrom(r.Context()) == nil {
				svcErr.WriteError(w, r, svcErr.Unauthenticated("authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFrom returns the authenticated session, or nil.
func SessionFrom(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey{}).(*auth.Session)
	return s
}

// TokenFrom returns the raw bearer token of an authenticated request.
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
