package handlers

import (
	"net/http"
	"time"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/service/profile"
	"github.com/oggyb/vibecheck/internal/transport/http/middleware"
)

type registerRequest struct {
	profileRequest
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    uint64    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type registerResponse struct {
	User userResponse `json:"user"`
	loginResponse
}

// Register handles POST /auth/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	u, login, err := h.svc.Auth.Register(r.Context(), req.profileRequest.input(), req.Password)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		User: toUser(u),
		loginResponse: loginResponse{
			Token:     login.Token,
			UserID:    u.ID,
			ExpiresAt: login.Session.ExpiresAt,
		},
	})
}

// Login handles POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	login, err := h.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     login.Token,
		UserID:    login.Session.UserID,
		ExpiresAt: login.Session.ExpiresAt,
	})
}

// Logout handles POST /auth/logout with the bearer token to revoke.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		svcErr.WriteError(w, r, svcErr.Unauthenticated("bearer token is required"))
		return
	}
	if err := h.svc.Auth.Logout(r.Context(), token); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p profileRequest) input() profile.Input {
	return profile.Input{
		Username:        p.Username,
		Email:           p.Email,
		Name:            p.Name,
		Age:             p.Age,
		Bio:             p.Bio,
		Location:        p.Location,
		FavoriteGenres:  p.FavoriteGenres,
		FavoriteArtists: p.FavoriteArtists,
		FavoriteSongs:   p.FavoriteSongs,
	}
}
