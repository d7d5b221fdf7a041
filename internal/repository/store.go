package repository

import (
	"context"
	"errors"

	"github.com/oggyb/vibecheck/internal/db"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// ProfileStore is the persistence contract for users, swipes, matches,
// messages and social connections. GormStore is the relational
// implementation; memory.Store keeps everything in process for demo mode.
type ProfileStore interface {
	UserStore
	SwipeStore
	MatchStore
	MessageStore
	ConnectionStore
}

type UserStore interface {
	CreateUser(ctx context.Context, u *db.User) error
	UserByID(ctx context.Context, id uint64) (*db.User, error)
	UserByUsername(ctx context.Context, username string) (*db.User, error)
	UpdateUser(ctx context.Context, u *db.User) error
	// DeleteUser removes the user together with their swipes, matches,
	// messages and connections.
	DeleteUser(ctx context.Context, id uint64) error
	// ListCandidates returns active users other than userID that userID has
	// not swiped on yet, with ids above afterID, ordered by id.
	ListCandidates(ctx context.Context, userID, afterID uint64, limit int) ([]db.User, error)
}

type SwipeStore interface {
	// CreateSwipe appends a swipe. Duplicates are accepted.
	CreateSwipe(ctx context.Context, s *db.Swipe) error
	// HasLiked reports whether swiper has any like (right or super) on target.
	HasLiked(ctx context.Context, swiperID, targetID uint64) (bool, error)
	// ListAdmirers returns the latest like per admirer of target, newest
	// first, excluding users that target has passed on.
	ListAdmirers(ctx context.Context, targetID uint64, token *string, limit int) ([]db.Swipe, *string, error)
	CountAdmirers(ctx context.Context, targetID uint64) (int64, error)
}

type MatchStore interface {
	// CreateMatch stores m unless the pair already has a match, in which
	// case m is overwritten with the stored one. The boolean reports
	// whether a new row was written.
	CreateMatch(ctx context.Context, m *db.Match) (bool, error)
	MatchByID(ctx context.Context, id uint64) (*db.Match, error)
	// ListMatches returns the user's matches, newest first.
	ListMatches(ctx context.Context, userID uint64) ([]db.Match, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *db.Message) error
	// ListMessages returns messages of a match oldest first.
	ListMessages(ctx context.Context, matchID uint64, token *string, limit int) ([]db.Message, *string, error)
	// LastMessage returns ErrNotFound when the match has no messages.
	LastMessage(ctx context.Context, matchID uint64) (*db.Message, error)
}

type ConnectionStore interface {
	CreateConnection(ctx context.Context, c *db.SocialConnection) error
	ConnectionByID(ctx context.Context, id uint64) (*db.SocialConnection, error)
	// PendingConnection finds a pending request between a and b in either direction.
	PendingConnection(ctx context.Context, a, b uint64) (*db.SocialConnection, error)
	UpdateConnection(ctx context.Context, c *db.SocialConnection) error
	// ListConnections returns connections involving userID, optionally
	// filtered by status, newest first.
	ListConnections(ctx context.Context, userID uint64, status *db.ConnectionStatus) ([]db.SocialConnection, error)
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
