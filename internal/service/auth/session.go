package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oggyb/vibecheck/internal/cache"
)

// ErrSessionNotFound is returned for unknown, expired or revoked sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side half of a login. The token only carries its id.
type Session struct {
	ID        string    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps sessions keyed by id until they expire.
type SessionStore interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessions stores sessions as JSON under session:<id> with a TTL
// matching the session expiry.
type RedisSessions struct {
	cache *cache.RedisCache
}

func NewRedisSessions(c *cache.RedisCache) *RedisSessions {
	return &RedisSessions{cache: c}
}

func (r *RedisSessions) Put(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.cache.SetJSON(ctx, r.cache.KeyForSession(s.ID), s, ttl)
}

func (r *RedisSessions) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	found, err := r.cache.GetJSON(ctx, r.cache.KeyForSession(id), &s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	return r.cache.Del(ctx, r.cache.KeyForSession(id))
}

// MemorySessions is the demo-mode store. Expired entries are dropped lazily.
type MemorySessions struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]Session
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{now: time.Now, sessions: make(map[string]Session)}
}

func (m *MemorySessions) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemorySessions) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
