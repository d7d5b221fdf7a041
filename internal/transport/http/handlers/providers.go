package handlers

import (
	"net/http"
	"strconv"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
)

// SpotifySearch handles GET /providers/spotify/search?q=&type=&limit=.
func (h *Handlers) SpotifySearch(w http.ResponseWriter, r *http.Request) {
	if h.svc.Spotify == nil {
		svcErr.WriteError(w, r, svcErr.Unavailable("spotify is not configured"))
		return
	}

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			svcErr.WriteError(w, r, svcErr.InvalidArgument("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	res, err := h.svc.Spotify.Search(r.Context(), q.Get("q"), q.Get("type"), limit)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GeniusSearch handles GET /providers/genius/search?q=.
func (h *Handlers) GeniusSearch(w http.ResponseWriter, r *http.Request) {
	if h.svc.Genius == nil {
		svcErr.WriteError(w, r, svcErr.Unavailable("genius is not configured"))
		return
	}

	songs, err := h.svc.Genius.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"songs": songs})
}
