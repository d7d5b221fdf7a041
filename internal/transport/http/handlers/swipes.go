package handlers

import (
	"net/http"
	"strconv"

	"github.com/oggyb/vibecheck/internal/db"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/service/swipe"
)

type swipeRequest struct {
	SwiperID  uint64 `json:"swiperId" validate:"required"`
	TargetID  uint64 `json:"targetId" validate:"required,nefield=SwiperID"`
	Direction string `json:"direction" validate:"required,direction"`
}

type swipeResponse struct {
	SwipeID uint64  `json:"swipeId"`
	Matched bool    `json:"matched"`
	MatchID *uint64 `json:"matchId,omitempty"`
}

type admirersResponse struct {
	Admirers      []admirerResponse `json:"admirers"`
	NextPageToken *string           `json:"nextPageToken,omitempty"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// Swipe handles POST /swipe.
func (h *Handlers) Swipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	if _, err := actingUser(r, req.SwiperID); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Swipes.Swipe(r.Context(), swipe.Request{
		SwiperID:  req.SwiperID,
		TargetID:  req.TargetID,
		Direction: db.Direction(req.Direction),
	})
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	out := swipeResponse{SwipeID: res.SwipeID, Matched: res.Matched}
	if res.Matched {
		out.MatchID = &res.MatchID
	}
	writeJSON(w, http.StatusOK, out)
}

// Discover handles GET /discover/{userId}?limit=.
func (h *Handlers) Discover(w http.ResponseWriter, r *http.Request) {
	userID, err := actingPathUser(r, "userId")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			svcErr.WriteError(w, r, svcErr.InvalidArgument("limit must be a non-negative integer"))
			return
		}
	}

	candidates, err := h.svc.Swipes.Discover(r.Context(), userID, limit)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	out := make([]candidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, toCandidate(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListMatches handles GET /matches/{userId}. The route parameter is named
// id because /matches/{id}/messages shares the segment.
func (h *Handlers) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := actingPathUser(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	views, err := h.svc.Swipes.ListMatches(r.Context(), userID)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	out := make([]matchResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toMatch(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListAdmirers handles GET /users/{id}/admirers?pageToken=.
func (h *Handlers) ListAdmirers(w http.ResponseWriter, r *http.Request) {
	userID, err := actingPathUser(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	admirers, next, err := h.svc.Swipes.ListAdmirers(r.Context(), userID, pageToken(r))
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	out := admirersResponse{Admirers: make([]admirerResponse, 0, len(admirers)), NextPageToken: next}
	for _, a := range admirers {
		out.Admirers = append(out.Admirers, admirerResponse{
			User:      toUser(&a.User),
			Direction: a.Direction,
			LikedAt:   a.LikedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// CountAdmirers handles GET /users/{id}/admirers/count.
func (h *Handlers) CountAdmirers(w http.ResponseWriter, r *http.Request) {
	userID, err := actingPathUser(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	n, err := h.svc.Swipes.CountAdmirers(r.Context(), userID)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}
