package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/service/profile"
)

type updateUserRequest struct {
	Name            *string   `json:"name" validate:"omitempty,max=128"`
	Age             *int      `json:"age" validate:"omitempty,min=18,max=120"`
	Bio             *string   `json:"bio" validate:"omitempty,max=1000"`
	Location        *string   `json:"location" validate:"omitempty,max=128"`
	FavoriteGenres  *[]string `json:"favoriteGenres" validate:"omitempty,max=50,dive,max=64"`
	FavoriteArtists *[]string `json:"favoriteArtists" validate:"omitempty,max=50,dive,max=128"`
	FavoriteSongs   *[]string `json:"favoriteSongs" validate:"omitempty,max=100,dive,max=200"`
	Photos          *[]string `json:"photos" validate:"omitempty,max=10"`
	Active          *bool     `json:"active"`
}

type presignRequest struct {
	FileName    string `json:"fileName" validate:"max=255"`
	ContentType string `json:"contentType" validate:"required"`
}

type presignResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateUser handles POST /users: a profile without credentials.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Profiles.Create(r.Context(), req.input())
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUser(u))
}

// GetUser handles GET /users/{id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Profiles.Get(r.Context(), id)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

// GetUserByUsername handles GET /users/by-username/{username}.
func (h *Handlers) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Profiles.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

// UpdateUser handles PATCH /users/{id}. Absent fields are left alone.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := actingPathUser(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Profiles.Update(r.Context(), id, profile.Patch{
		Name:            req.Name,
		Age:             req.Age,
		Bio:             req.Bio,
		Location:        req.Location,
		FavoriteGenres:  req.FavoriteGenres,
		FavoriteArtists: req.FavoriteArtists,
		FavoriteSongs:   req.FavoriteSongs,
		Photos:          req.Photos,
		Active:          req.Active,
	})
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := actingPathUser(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	if err := h.svc.Profiles.Delete(r.Context(), id); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PresignPhoto handles POST /users/{id}/photos/presign.
func (h *Handlers) PresignPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := actingPathUser(r, "id")
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	var req presignRequest
	if err := decode(w, r, &req); err != nil {
		svcErr.WriteError(w, r, err)
		return
	}

	up, err := h.svc.Profiles.PresignPhoto(r.Context(), id, req.FileName, req.ContentType)
	if err != nil {
		svcErr.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presignResponse{
		Key:       up.Key,
		URL:       up.Upload.URL,
		Method:    up.Upload.Method,
		ExpiresAt: up.Upload.ExpiresAt,
	})
}
