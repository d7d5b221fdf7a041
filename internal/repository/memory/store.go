// Package memory is the in-process ProfileStore used in demo mode.
//
// Every method takes the store mutex, so the "check then create" sequence in
// CreateMatch is atomic and a pair can never match twice. Records are copied
// on the way in and out; callers never share memory with the store.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/repository"
	"github.com/oggyb/vibecheck/internal/utils/pagination"
)

type pair struct{ a, b uint64 }

// Store keeps all records in maps guarded by one mutex.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextID uint64

	users       map[uint64]*db.User
	usernames   map[string]uint64
	swipes      []*db.Swipe
	matches     map[uint64]*db.Match
	matchByPair map[pair]uint64
	messages    map[uint64][]*db.Message
	connections map[uint64]*db.SocialConnection
}

var _ repository.ProfileStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		users:       make(map[uint64]*db.User),
		usernames:   make(map[string]uint64),
		matches:     make(map[uint64]*db.Match),
		matchByPair: make(map[pair]uint64),
		messages:    make(map[uint64][]*db.Message),
		connections: make(map[uint64]*db.SocialConnection),
	}
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

func cloneUser(u *db.User) *db.User {
	c := *u
	c.FavoriteGenres = slices.Clone(u.FavoriteGenres)
	c.FavoriteArtists = slices.Clone(u.FavoriteArtists)
	c.FavoriteSongs = slices.Clone(u.FavoriteSongs)
	c.Photos = slices.Clone(u.Photos)
	if u.Email != nil {
		e := *u.Email
		c.Email = &e
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (s *Store) emailTaken(email *string, except uint64) bool {
	if email == nil {
		return false
	}
	for _, u := range s.users {
		if u.ID != except && u.Email != nil && *u.Email == *email {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u *db.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[u.Username]; taken || s.emailTaken(u.Email, 0) {
		return repository.ErrConflict
	}

	now := s.now()
	u.ID = s.id()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = cloneUser(u)
	s.usernames[u.Username] = u.ID
	return nil
}

func (s *Store) UserByID(_ context.Context, id uint64) (*db.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*db.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) UpdateUser(_ context.Context, u *db.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if id, taken := s.usernames[u.Username]; taken && id != u.ID {
		return repository.ErrConflict
	}
	if s.emailTaken(u.Email, u.ID) {
		return repository.ErrConflict
	}

	delete(s.usernames, old.Username)
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = s.now()
	s.users[u.ID] = cloneUser(u)
	s.usernames[u.Username] = u.ID
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	delete(s.usernames, u.Username)

	s.swipes = slices.DeleteFunc(s.swipes, func(sw *db.Swipe) bool {
		return sw.SwiperID == id || sw.TargetID == id
	})
	for mid, m := range s.matches {
		if m.HasUser(id) {
			delete(s.matches, mid)
			delete(s.matchByPair, pair{m.UserAID, m.UserBID})
			delete(s.messages, mid)
		}
	}
	for cid, c := range s.connections {
		if c.Involves(id) {
			delete(s.connections, cid)
		}
	}
	return nil
}

func (s *Store) ListCandidates(_ context.Context, userID, afterID uint64, limit int) ([]db.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	swiped := make(map[uint64]struct{})
	for _, sw := range s.swipes {
		if sw.SwiperID == userID {
			swiped[sw.TargetID] = struct{}{}
		}
	}

	out := []db.User{}
	for _, u := range s.users {
		if u.ID == userID || u.ID <= afterID || !u.Active {
			continue
		}
		if _, done := swiped[u.ID]; done {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	slices.SortFunc(out, func(a, b db.User) int { return cmp.Compare(a.ID, b.ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateSwipe(_ context.Context, sw *db.Swipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw.ID = s.id()
	sw.CreatedAt = s.now()
	c := *sw
	s.swipes = append(s.swipes, &c)
	return nil
}

func (s *Store) HasLiked(_ context.Context, swiperID, targetID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sw := range s.swipes {
		if sw.SwiperID == swiperID && sw.TargetID == targetID && sw.Direction.IsLike() {
			return true, nil
		}
	}
	return false, nil
}

// admirers returns the latest like per admirer of target, newest first.
func (s *Store) admirers(targetID uint64) []db.Swipe {
	passed := make(map[uint64]struct{})
	latest := make(map[uint64]*db.Swipe)
	for _, sw := range s.swipes {
		if sw.SwiperID == targetID && sw.Direction == db.DirectionLeft {
			passed[sw.TargetID] = struct{}{}
		}
		if sw.TargetID == targetID && sw.Direction.IsLike() {
			if prev, ok := latest[sw.SwiperID]; !ok || sw.ID > prev.ID {
				latest[sw.SwiperID] = sw
			}
		}
	}

	out := make([]db.Swipe, 0, len(latest))
	for swiper, sw := range latest {
		if _, ok := passed[swiper]; ok {
			continue
		}
		out = append(out, *sw)
	}
	slices.SortFunc(out, func(a, b db.Swipe) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (s *Store) ListAdmirers(_ context.Context, targetID uint64, token *string, limit int) ([]db.Swipe, *string, error) {
	cursor, err := pagination.Decode(deref(token))
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	all := s.admirers(targetID)
	s.mu.RUnlock()

	if !cursor.IsZero() {
		ts := cursor.Time()
		all = slices.DeleteFunc(all, func(sw db.Swipe) bool {
			return !(sw.CreatedAt.Before(ts) || (sw.CreatedAt.Equal(ts) && sw.ID < cursor.ID))
		})
	}

	if len(all) > limit+1 {
		all = all[:limit+1]
	}
	page, next := pagination.Page(all, limit, func(sw db.Swipe) pagination.Cursor {
		return pagination.At(sw.ID, sw.CreatedAt)
	})
	return page, next, nil
}

func (s *Store) CountAdmirers(_ context.Context, targetID uint64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.admirers(targetID))), nil
}

func (s *Store) CreateMatch(_ context.Context, m *db.Match) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.UserAID > m.UserBID {
		m.UserAID, m.UserBID = m.UserBID, m.UserAID
	}
	key := pair{m.UserAID, m.UserBID}
	if id, ok := s.matchByPair[key]; ok {
		*m = *s.matches[id]
		return false, nil
	}

	m.ID = s.id()
	m.CreatedAt = s.now()
	c := *m
	s.matches[m.ID] = &c
	s.matchByPair[key] = m.ID
	return true, nil
}

func (s *Store) MatchByID(_ context.Context, id uint64) (*db.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (s *Store) ListMatches(_ context.Context, userID uint64) ([]db.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []db.Match{}
	for _, m := range s.matches {
		if m.HasUser(userID) {
			out = append(out, *m)
		}
	}
	slices.SortFunc(out, func(a, b db.Match) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) CreateMessage(_ context.Context, m *db.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.id()
	m.CreatedAt = s.now()
	c := *m
	s.messages[m.MatchID] = append(s.messages[m.MatchID], &c)
	return nil
}

// ListMessages relies on messages being appended in id order, which is also
// creation order.
func (s *Store) ListMessages(_ context.Context, matchID uint64, token *string, limit int) ([]db.Message, *string, error) {
	cursor, err := pagination.Decode(deref(token))
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]db.Message, 0, limit+1)
	for _, m := range s.messages[matchID] {
		if !cursor.IsZero() && m.ID <= cursor.ID {
			continue
		}
		out = append(out, *m)
		if len(out) > limit {
			break
		}
	}
	page, next := pagination.Page(out, limit, func(m db.Message) pagination.Cursor {
		return pagination.At(m.ID, m.CreatedAt)
	})
	return page, next, nil
}

func (s *Store) LastMessage(_ context.Context, matchID uint64) (*db.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[matchID]
	if len(msgs) == 0 {
		return nil, repository.ErrNotFound
	}
	c := *msgs[len(msgs)-1]
	return &c, nil
}

func (s *Store) CreateConnection(_ context.Context, c *db.SocialConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c.ID = s.id()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Status == "" {
		c.Status = db.ConnectionPending
	}
	cp := *c
	s.connections[c.ID] = &cp
	return nil
}

func (s *Store) ConnectionByID(_ context.Context, id uint64) (*db.SocialConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.connections[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) PendingConnection(_ context.Context, a, b uint64) (*db.SocialConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.connections {
		if c.Status != db.ConnectionPending {
			continue
		}
		if (c.RequesterID == a && c.ReceiverID == b) || (c.RequesterID == b && c.ReceiverID == a) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdateConnection(_ context.Context, c *db.SocialConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.connections[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = s.now()
	cp := *c
	s.connections[c.ID] = &cp
	return nil
}

func (s *Store) ListConnections(_ context.Context, userID uint64, status *db.ConnectionStatus) ([]db.SocialConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []db.SocialConnection{}
	for _, c := range s.connections {
		if !c.Involves(userID) {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b db.SocialConnection) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
