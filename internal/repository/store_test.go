package repository_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/oggyb/vibecheck/internal/config"
	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/repository"
	"github.com/oggyb/vibecheck/internal/repository/memory"
	"github.com/oggyb/vibecheck/internal/utils/pagination"
)

// stores runs fn once per ProfileStore implementation, each on a fresh store.
func stores(t *testing.T, fn func(t *testing.T, s repository.ProfileStore)) {
	t.Helper()

	t.Run("gorm", func(t *testing.T) {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
		database, err := db.Open(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name), false)
		require.NoError(t, err)
		require.NoError(t, db.Migrate(database))
		t.Cleanup(func() {
			if sqlDB, err := database.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		fn(t, repository.NewGormStore(database))
	})

	t.Run("memory", func(t *testing.T) {
		fn(t, memory.New())
	})
}

func mkUser(t *testing.T, s repository.ProfileStore, username string) *db.User {
	t.Helper()
	u := &db.User{
		Username:       username,
		Name:           strings.ToUpper(username[:1]) + username[1:],
		Active:         true,
		FavoriteGenres: datatypes.JSONSlice[string]{"Indie"},
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func swipe(t *testing.T, s repository.ProfileStore, from, to uint64, dir db.Direction) *db.Swipe {
	t.Helper()
	sw := &db.Swipe{SwiperID: from, TargetID: to, Direction: dir}
	require.NoError(t, s.CreateSwipe(context.Background(), sw))
	return sw
}

func TestUsers(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		alice := mkUser(t, s, "alice")

		got, err := s.UserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, []string{"Indie"}, []string(got.FavoriteGenres))

		got, err = s.UserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = s.UserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = s.CreateUser(ctx, &db.User{Username: "alice", Active: true})
		assert.ErrorIs(t, err, repository.ErrConflict)

		got.Bio = "crate digger"
		got.FavoriteArtists = datatypes.JSONSlice[string]{"Khruangbin"}
		require.NoError(t, s.UpdateUser(ctx, got))

		got, err = s.UserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "crate digger", got.Bio)
		assert.Equal(t, []string{"Khruangbin"}, []string(got.FavoriteArtists))

		err = s.UpdateUser(ctx, &db.User{ID: 9999, Username: "ghost"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDeleteUserCascades(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		a := mkUser(t, s, "alice")
		b := mkUser(t, s, "bob")
		c := mkUser(t, s, "carol")

		swipe(t, s, a.ID, b.ID, db.DirectionRight)
		swipe(t, s, b.ID, a.ID, db.DirectionRight)
		swipe(t, s, c.ID, b.ID, db.DirectionRight)

		m := db.NewMatch(a.ID, b.ID, 80)
		_, err := s.CreateMatch(ctx, m)
		require.NoError(t, err)
		require.NoError(t, s.CreateMessage(ctx, &db.Message{MatchID: m.ID, SenderID: a.ID, Content: "hey"}))
		require.NoError(t, s.CreateConnection(ctx, &db.SocialConnection{
			RequesterID: a.ID, ReceiverID: c.ID, Status: db.ConnectionPending, ConnectionType: db.ConnectionFriend,
		}))

		require.NoError(t, s.DeleteUser(ctx, a.ID))

		_, err = s.UserByID(ctx, a.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = s.MatchByID(ctx, m.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = s.LastMessage(ctx, m.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		liked, err := s.HasLiked(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, liked)

		conns, err := s.ListConnections(ctx, c.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, conns)

		// unrelated rows stay
		count, err := s.CountAdmirers(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		assert.ErrorIs(t, s.DeleteUser(ctx, a.ID), repository.ErrNotFound)
	})
}

func TestListCandidates(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		me := mkUser(t, s, "me")
		liked := mkUser(t, s, "liked")
		passed := mkUser(t, s, "passed")
		fresh := mkUser(t, s, "fresh")
		other := mkUser(t, s, "other")

		inactive := mkUser(t, s, "inactive")
		inactive.Active = false
		require.NoError(t, s.UpdateUser(ctx, inactive))

		swipe(t, s, me.ID, liked.ID, db.DirectionRight)
		swipe(t, s, me.ID, passed.ID, db.DirectionLeft)
		// someone else's swipes do not hide candidates from me
		swipe(t, s, other.ID, fresh.ID, db.DirectionLeft)

		users, err := s.ListCandidates(ctx, me.ID, 0, 20)
		require.NoError(t, err)
		ids := make([]uint64, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		assert.Equal(t, []uint64{fresh.ID, other.ID}, ids)

		users, err = s.ListCandidates(ctx, me.ID, 0, 1)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, fresh.ID, users[0].ID)

		// keyset continuation picks up after the last id seen
		users, err = s.ListCandidates(ctx, me.ID, fresh.ID, 1)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, other.ID, users[0].ID)

		users, err = s.ListCandidates(ctx, me.ID, other.ID, 1)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestHasLiked(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		a := mkUser(t, s, "alice")
		b := mkUser(t, s, "bob")
		c := mkUser(t, s, "carol")

		swipe(t, s, a.ID, b.ID, db.DirectionLeft)
		liked, err := s.HasLiked(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, liked)

		// any like on record counts, even after a later pass
		swipe(t, s, a.ID, b.ID, db.DirectionRight)
		swipe(t, s, a.ID, b.ID, db.DirectionLeft)
		liked, err = s.HasLiked(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, liked)

		swipe(t, s, c.ID, b.ID, db.DirectionSuper)
		liked, err = s.HasLiked(ctx, c.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, liked)

		liked, err = s.HasLiked(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.False(t, liked)
	})
}

func TestAdmirers(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		target := mkUser(t, s, "target")
		u1 := mkUser(t, s, "u1")
		u2 := mkUser(t, s, "u2")
		u3 := mkUser(t, s, "u3")
		u4 := mkUser(t, s, "u4")

		swipe(t, s, u1.ID, target.ID, db.DirectionRight)
		swipe(t, s, u2.ID, target.ID, db.DirectionSuper)
		swipe(t, s, u3.ID, target.ID, db.DirectionRight)
		swipe(t, s, u4.ID, target.ID, db.DirectionLeft)
		latest := swipe(t, s, u1.ID, target.ID, db.DirectionSuper)

		// target passed on u3
		swipe(t, s, target.ID, u3.ID, db.DirectionLeft)

		count, err := s.CountAdmirers(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		page, next, err := s.ListAdmirers(ctx, target.ID, nil, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.NotNil(t, next)
		assert.Equal(t, latest.ID, page[0].ID)
		assert.Equal(t, u1.ID, page[0].SwiperID)

		page, next, err = s.ListAdmirers(ctx, target.ID, next, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Nil(t, next)
		assert.Equal(t, u2.ID, page[0].SwiperID)

		all, next, err := s.ListAdmirers(ctx, target.ID, nil, 10)
		require.NoError(t, err)
		assert.Nil(t, next)
		assert.Len(t, all, 2)

		bad := "%%%"
		_, _, err = s.ListAdmirers(ctx, target.ID, &bad, 10)
		assert.ErrorIs(t, err, pagination.ErrInvalidToken)
	})
}

func TestCreateMatchIsIdempotentPerPair(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		a := mkUser(t, s, "alice")
		b := mkUser(t, s, "bob")

		first := db.NewMatch(b.ID, a.ID, 80)
		created, err := s.CreateMatch(ctx, first)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, a.ID, first.UserAID, "pair is stored lower id first")

		second := &db.Match{UserAID: b.ID, UserBID: a.ID, CompatibilityScore: 99, Matched: true}
		created, err = s.CreateMatch(ctx, second)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 80, second.CompatibilityScore)

		for _, id := range []uint64{a.ID, b.ID} {
			matches, err := s.ListMatches(ctx, id)
			require.NoError(t, err)
			assert.Len(t, matches, 1)
		}

		_, err = s.MatchByID(ctx, 424242)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestCreateMatchConcurrent(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	a := mkUser(t, s, "alice")
	b := mkUser(t, s, "bob")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[uint64]struct{}{}
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := db.NewMatch(a.ID, b.ID, 70+i)
			ok, err := s.CreateMatch(ctx, m)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			ids[m.ID] = struct{}{}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)
}

func TestMessages(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		a := mkUser(t, s, "alice")
		b := mkUser(t, s, "bob")
		m := db.NewMatch(a.ID, b.ID, 75)
		_, err := s.CreateMatch(ctx, m)
		require.NoError(t, err)

		_, err = s.LastMessage(ctx, m.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		for i := 1; i <= 3; i++ {
			require.NoError(t, s.CreateMessage(ctx, &db.Message{
				MatchID: m.ID, SenderID: a.ID, Content: fmt.Sprintf("msg %d", i),
			}))
		}

		page, next, err := s.ListMessages(ctx, m.ID, nil, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.NotNil(t, next)
		assert.Equal(t, "msg 1", page[0].Content)
		assert.Equal(t, "msg 2", page[1].Content)

		page, next, err = s.ListMessages(ctx, m.ID, next, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Nil(t, next)
		assert.Equal(t, "msg 3", page[0].Content)

		last, err := s.LastMessage(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "msg 3", last.Content)
	})
}

func TestConnections(t *testing.T) {
	stores(t, func(t *testing.T, s repository.ProfileStore) {
		ctx := context.Background()
		a := mkUser(t, s, "alice")
		b := mkUser(t, s, "bob")
		c := mkUser(t, s, "carol")

		ab := &db.SocialConnection{RequesterID: a.ID, ReceiverID: b.ID, Status: db.ConnectionPending, ConnectionType: db.ConnectionMusicBuddy}
		require.NoError(t, s.CreateConnection(ctx, ab))
		ca := &db.SocialConnection{RequesterID: c.ID, ReceiverID: a.ID, Status: db.ConnectionPending, ConnectionType: db.ConnectionFriend}
		require.NoError(t, s.CreateConnection(ctx, ca))

		pending, err := s.PendingConnection(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.Equal(t, ab.ID, pending.ID)

		_, err = s.PendingConnection(ctx, b.ID, c.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		ab.Status = db.ConnectionAccepted
		require.NoError(t, s.UpdateConnection(ctx, ab))

		got, err := s.ConnectionByID(ctx, ab.ID)
		require.NoError(t, err)
		assert.Equal(t, db.ConnectionAccepted, got.Status)

		_, err = s.PendingConnection(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		all, err := s.ListConnections(ctx, a.ID, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		status := db.ConnectionPending
		onlyPending, err := s.ListConnections(ctx, a.ID, &status)
		require.NoError(t, err)
		require.Len(t, onlyPending, 1)
		assert.Equal(t, ca.ID, onlyPending[0].ID)

		err = s.UpdateConnection(ctx, &db.SocialConnection{ID: 777, Status: db.ConnectionBlocked})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
