package handlers

import (
	"net/http"

	"github.com/oggyb/vibecheck/internal/db"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
)

type connectionRequest struct {
	RequesterID    uint64 `json:"requesterId"`
	ReceiverID     uint64 `json:"receiverId" validate:"required"`
	ConnectionType string `json:"connectionType" validate:"required,oneof=friend music_buddy event_buddy dating"`
}

type respondRequest struct {
	ActorID uint64 `json:"actorId"`
	Status  string `json:"status" validate:"required,oneof=accepted declined blocked"`
}

// RequestConnection handles POST /connections.
func (h *Handlers) RequestConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	requester, err := actingUser(r, req.RequesterID)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	c, err := h.svc.Connections.Request(r.Context(), requester, req.ReceiverID, db.ConnectionType(req.ConnectionType))
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toConnection(c))
}

// RespondConnection handles PATCH /connections/{id}.
func (h *Handlers) RespondConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	var req respondRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	actor, err := actingUser(r, req.ActorID)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	c, err := h.svc.Connections.Respond(r.Context(), id, actor, db.ConnectionStatus(req.Status))
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toConnection(c))
}

// ListConnections handles GET /users/{id}/connections?status=.
func (h *Handlers) ListConnections(w http.ResponseWriter, r *http.Request) {
	userID, err := actingPathUser(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	var st *db.ConnectionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := db.ConnectionStatus(raw)
		st = &s
	}

	conns, err := h.svc.Connections.List(r.Context(), userID, st)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	out := make([]connectionResponse, 0, len(conns))
	for i := range conns {
		out = append(out, toConnection(&conns[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
