// Package handlers implements the REST endpoints on top of the services.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/provider"
	"github.com/oggyb/vibecheck/internal/service/auth"
	"github.com/oggyb/vibecheck/internal/service/connection"
	"github.com/oggyb/vibecheck/internal/service/message"
	"github.com/oggyb/vibecheck/internal/service/profile"
	"github.com/oggyb/vibecheck/internal/service/swipe"
	"github.com/oggyb/vibecheck/internal/transport/http/middleware"
	"github.com/oggyb/vibecheck/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Services are the dependencies of the handlers. Spotify and Genius may be
// nil; their routes then answer 503.
type Services struct {
	Auth        *auth.Service
	Profiles    *profile.Service
	Swipes      *swipe.Service
	Messages    *message.Service
	Connections *connection.Service
	Spotify     *provider.Spotify
	Genius      *provider.Genius
}

// Handlers groups every endpoint.
type Handlers struct {
	svc   Services
	ready func(ctx context.Context) error
}

// New creates the handlers. ready backs /healthz and may be nil.
func New(svc Services, ready func(ctx context.Context) error) *Handlers {
	return &Handlers{svc: svc, ready: ready}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decode reads a JSON body strictly (unknown fields are rejected) and runs
// the struct validation rules.
func decode(w http.ResponseWriter, r *http.Request, value any) error {
	body := &limitedBody{r: http.MaxBytesReader(w, r.Body, maxBodyBytes)}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case body.exceeded || errors.As(err, &tooLarge):
			return svcErr.InvalidArgument(fmt.Sprintf("request body too large (limit %d bytes)", maxBodyBytes))
		case errors.Is(err, io.EOF):
			return svcErr.InvalidArgument("request body is required")
		default:
			return svcErr.InvalidArgument("malformed JSON body")
		}
	}
	if err := validation.Struct(value); err != nil {
		return svcErr.InvalidArgument(err.Error())
	}
	return nil
}

// limitedBody remembers whether the size limit was hit, since the JSON
// decoder does not always surface the reader's error.
type limitedBody struct {
	r        io.Reader
	exceeded bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		b.exceeded = true
	}
	return n, err
}

// pathID parses a positive numeric path parameter.
func pathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(name + " must be a positive integer")
	}
	return id, nil
}

// queryID parses an optional numeric query parameter; 0 when absent.
func queryID(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, svcErr.InvalidArgument(name + " must be a positive integer")
	}
	return id, nil
}

func pageToken(r *http.Request) *string {
	if t := r.URL.Query().Get("pageToken"); t != "" {
		return &t
	}
	return nil
}

// actingUser returns the user a request acts for. With a session the
// claimed id must be the session's user (0 means "me"); without one the
// claimed id is taken as is.
func actingUser(r *http.Request, claimed uint64) (uint64, error) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		return claimed, nil
	}
	if claimed == 0 {
		return sess.UserID, nil
	}
	if claimed != sess.UserID {
		return 0, svcErr.PermissionDenied("cannot act on behalf of another user")
	}
	return claimed, nil
}

// actingPathUser combines pathID and actingUser.
func actingPathUser(r *http.Request, name string) (uint64, error) {
	id, err := pathID(r, name)
	if err != nil {
		return 0, err
	}
	return actingUser(r, id)
}
