package db

import (
	"time"

	"gorm.io/datatypes"
)

// Direction is the kind of swipe a user makes on another user.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionSuper Direction = "super"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionLeft, DirectionRight, DirectionSuper:
		return true
	}
	return false
}

// IsLike reports whether the swipe counts towards a mutual match.
// Super likes count the same as right swipes.
func (d Direction) IsLike() bool {
	return d == DirectionRight || d == DirectionSuper
}

// LikeDirections lists every direction for which IsLike is true.
var LikeDirections = []Direction{DirectionRight, DirectionSuper}

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

type ConnectionType string

const (
	ConnectionFriend     ConnectionType = "friend"
	ConnectionMusicBuddy ConnectionType = "music_buddy"
	ConnectionEventBuddy ConnectionType = "event_buddy"
	ConnectionDating     ConnectionType = "dating"
)

// User table. The three taste vectors and the photo keys are JSON columns.
type User struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement"`
	Username        string  `gorm:"uniqueIndex;size:64;not null"`
	Email           *string `gorm:"uniqueIndex;size:128"`
	PasswordHash    string  `gorm:"size:255"`
	Name            string  `gorm:"size:128"`
	Age             int
	Bio             string `gorm:"size:1000"`
	Location        string `gorm:"size:128"`
	FavoriteGenres  datatypes.JSONSlice[string]
	FavoriteArtists datatypes.JSONSlice[string]
	FavoriteSongs   datatypes.JSONSlice[string]
	Photos          datatypes.JSONSlice[string]
	Active          bool `gorm:"default:true"`
	LastLoginAt     *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// Swipe is an append-only record of one user's decision on another.
//
// Indexes:
//   - idx_swiper_target(swiper_id, target_id): discovery exclusion and the
//     reciprocal like lookup.
//   - idx_target_direction_created(target_id, direction, created_at DESC):
//     "who liked me" lists with pagination.
type Swipe struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	SwiperID  uint64    `gorm:"not null;index:idx_swiper_target,priority:1"`
	TargetID  uint64    `gorm:"not null;index:idx_swiper_target,priority:2;index:idx_target_direction_created,priority:1"`
	Direction Direction `gorm:"size:8;not null;index:idx_target_direction_created,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_target_direction_created,priority:3,sort:desc"`
}

// Match pairs two users after mutual likes. UserAID is always the lower id,
// and the unique pair index guarantees one match per pair.
type Match struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement"`
	UserAID            uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:1"`
	UserBID            uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index"`
	CompatibilityScore int       `gorm:"not null"`
	Matched            bool      `gorm:"not null;default:true"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
}

// NewMatch builds a match with the pair in canonical order.
func NewMatch(userA, userB uint64, score int) *Match {
	if userA > userB {
		userA, userB = userB, userA
	}
	return &Match{
		UserAID:            userA,
		UserBID:            userB,
		CompatibilityScore: score,
		Matched:            true,
	}
}

// HasUser reports whether userID participates in the match.
func (m *Match) HasUser(userID uint64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// PartnerOf returns the other participant, or false when userID is not one.
func (m *Match) PartnerOf(userID uint64) (uint64, bool) {
	switch userID {
	case m.UserAID:
		return m.UserBID, true
	case m.UserBID:
		return m.UserAID, true
	}
	return 0, false
}

// Message belongs to a match.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	MatchID   uint64    `gorm:"not null;index:idx_match_created,priority:1"`
	SenderID  uint64    `gorm:"not null"`
	Content   string    `gorm:"size:2000;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_match_created,priority:2"`
}

// SocialConnection is a non-dating relationship request between two users.
type SocialConnection struct {
	ID             uint64           `gorm:"primaryKey;autoIncrement"`
	RequesterID    uint64           `gorm:"not null;index"`
	ReceiverID     uint64           `gorm:"not null;index"`
	Status         ConnectionStatus `gorm:"size:16;not null;default:pending"`
	ConnectionType ConnectionType   `gorm:"size:16;not null"`
	CreatedAt      time.Time        `gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime"`
}

// Involves reports whether userID is either side of the connection.
func (c *SocialConnection) Involves(userID uint64) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// AllModels lists every table for AutoMigrate.
func AllModels() []any {
	return []any{&User{}, &Swipe{}, &Match{}, &Message{}, &SocialConnection{}}
}
