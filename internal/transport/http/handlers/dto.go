package handlers

import (
	"time"

	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/service/swipe"
)

type userResponse struct {
	ID              uint64     `json:"id"`
	Username        string     `json:"username"`
	Email           *string    `json:"email,omitempty"`
	Name            string     `json:"name"`
	Age             int        `json:"age"`
	Bio             string     `json:"bio"`
	Location        string     `json:"location"`
	FavoriteGenres  []string   `json:"favoriteGenres"`
	FavoriteArtists []string   `json:"favoriteArtists"`
	FavoriteSongs   []string   `json:"favoriteSongs"`
	Photos          []string   `json:"photos"`
	Active          bool       `json:"active"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toUser(u *db.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Name:            u.Name,
		Age:             u.Age,
		Bio:             u.Bio,
		Location:        u.Location,
		FavoriteGenres:  nonNil(u.FavoriteGenres),
		FavoriteArtists: nonNil(u.FavoriteArtists),
		FavoriteSongs:   nonNil(u.FavoriteSongs),
		Photos:          nonNil(u.Photos),
		Active:          u.Active,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// nonNil keeps empty lists as [] in JSON.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type candidateResponse struct {
	userResponse
	CompatibilityScore int      `json:"compatibilityScore"`
	SharedGenres       []string `json:"sharedGenres"`
	SharedArtists      []string `json:"sharedArtists"`
	SharedInterests    []string `json:"sharedInterests"`
}

func toCandidate(c swipe.Candidate) candidateResponse {
	return candidateResponse{
		userResponse:       toUser(&c.User),
		CompatibilityScore: c.CompatibilityScore,
		SharedGenres:       nonNil(c.SharedGenres),
		SharedArtists:      nonNil(c.SharedArtists),
		SharedInterests:    nonNil(c.SharedInterests),
	}
}

type messageResponse struct {
	ID        uint64    `json:"id"`
	MatchID   uint64    `json:"matchId"`
	SenderID  uint64    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMessage(m *db.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

type matchResponse struct {
	ID                 uint64           `json:"id"`
	UserAID            uint64           `json:"userAId"`
	UserBID            uint64           `json:"userBId"`
	CompatibilityScore int              `json:"compatibilityScore"`
	Matched            bool             `json:"matched"`
	CreatedAt          time.Time        `json:"createdAt"`
	Partner            userResponse     `json:"partner"`
	LastMessage        *messageResponse `json:"lastMessage,omitempty"`
}

func toMatch(v swipe.MatchView) matchResponse {
	out := matchResponse{
		ID:                 v.Match.ID,
		UserAID:            v.Match.UserAID,
		UserBID:            v.Match.UserBID,
		CompatibilityScore: v.Match.CompatibilityScore,
		Matched:            v.Match.Matched,
		CreatedAt:          v.Match.CreatedAt,
		Partner:            toUser(&v.Partner),
	}
	if v.LastMessage != nil {
		m := toMessage(v.LastMessage)
		out.LastMessage = &m
	}
	return out
}

type admirerResponse struct {
	User      userResponse `json:"user"`
	Direction db.Direction `json:"direction"`
	LikedAt   time.Time    `json:"likedAt"`
}

type connectionResponse struct {
	ID             uint64              `json:"id"`
	RequesterID    uint64              `json:"requesterId"`
	ReceiverID     uint64              `json:"receiverId"`
	Status         db.ConnectionStatus `json:"status"`
	ConnectionType db.ConnectionType   `json:"connectionType"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func toConnection(c *db.SocialConnection) connectionResponse {
	return connectionResponse{
		ID:             c.ID,
		RequesterID:    c.RequesterID,
		ReceiverID:     c.ReceiverID,
		Status:         c.Status,
		ConnectionType: c.ConnectionType,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// profileRequest is the writable part of a profile, shared by POST /users
// and registration.
type profileRequest struct {
	Username        string   `json:"username" validate:"required,min=3,max=64,username"`
	Email           *string  `json:"email" validate:"omitempty,email,max=128"`
	Name            string   `json:"name" validate:"max=128"`
	Age             int      `json:"age" validate:"omitempty,min=18,max=120"`
	Bio             string   `json:"bio" validate:"max=1000"`
	Location        string   `json:"location" validate:"max=128"`
	FavoriteGenres  []string `json:"favoriteGenres" validate:"max=50,dive,max=64"`
	FavoriteArtists []string `json:"favoriteArtists" validate:"max=50,dive,max=128"`
	FavoriteSongs   []string `json:"favoriteSongs" validate:"max=100,dive,max=200"`
}
