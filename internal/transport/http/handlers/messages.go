package handlers

import (
	"net/http"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
)

type sendMessageRequest struct {
	SenderID uint64 `json:"senderId"`
	Content  string `json:"content" validate:"required"`
}

type messagesResponse struct {
	Messages      []messageResponse `json:"messages"`
	NextPageToken *string           `json:"nextPageToken,omitempty"`
}

// SendMessage handles POST /matches/{matchId}/messages. With a session
// senderId may be omitted.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	var req sendMessageRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	sender, err := actingUser(r, req.SenderID)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	msg, err := h.svc.Messages.Send(r.Context(), matchID, sender, req.Content)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessage(msg))
}

// ListMessages handles GET /matches/{matchId}/messages?userId=&pageToken=.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	claimed, err := queryID(r, "userId")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	requester, err := actingUser(r, claimed)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	msgs, next, err := h.svc.Messages.List(r.Context(), matchID, requester, pageToken(r))
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	out := messagesResponse{Messages: make([]messageResponse, 0, len(msgs)), NextPageToken: next}
	for i := range msgs {
		out.Messages = append(out.Messages, toMessage(&msgs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
