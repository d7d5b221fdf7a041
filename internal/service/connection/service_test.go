package connection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/vibecheck/internal/app"
	"github.com/oggyb/vibecheck/internal/config"
	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/logger"
	"github.com/oggyb/vibecheck/internal/repository/memory"
	"github.com/oggyb/vibecheck/internal/service/connection"
)

func setup(t *testing.T) (*connection.Service, []uint64) {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	var ids []uint64
	for _, name := range []string{"alice", "bob", "carol"} {
		u := &db.User{Username: name, Active: true}
		require.NoError(t, store.CreateUser(ctx, u))
		ids = append(ids, u.ID)
	}
	return connection.NewService(app.New(config.New(), store, nil, logger.Discard())), ids
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to db.ConnectionStatus
		want     bool
	}{
		{db.ConnectionPending, db.ConnectionAccepted, true},
		{db.ConnectionPending, db.ConnectionDeclined, true},
		{db.ConnectionPending, db.ConnectionBlocked, true},
		{db.ConnectionAccepted, db.ConnectionBlocked, true},
		{db.ConnectionAccepted, db.ConnectionDeclined, false},
		{db.ConnectionDeclined, db.ConnectionAccepted, false},
		{db.ConnectionBlocked, db.ConnectionAccepted, false},
		{db.ConnectionDeclined, db.ConnectionBlocked, false},
		{db.ConnectionAccepted, db.ConnectionPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, connection.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRequestAndAccept(t *testing.T) {
	svc, ids := setup(t)
	ctx := context.Background()
	alice, bob := ids[0], ids[1]

	c, err := svc.Request(ctx, alice, bob, db.ConnectionMusicBuddy)
	require.NoError(t, err)
	assert.Equal(t, db.ConnectionPending, c.Status)

	// requester cannot accept their own request
	_, err = svc.Respond(ctx, c.ID, alice, db.ConnectionAccepted)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	c, err = svc.Respond(ctx, c.ID, bob, db.ConnectionAccepted)
	require.NoError(t, err)
	assert.Equal(t, db.ConnectionAccepted, c.Status)

	_, err = svc.Respond(ctx, c.ID, bob, db.ConnectionDeclined)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	c, err = svc.Respond(ctx, c.ID, bob, db.ConnectionBlocked)
	require.NoError(t, err)
	assert.Equal(t, db.ConnectionBlocked, c.Status)
}

func TestRequest_Rejections(t *testing.T) {
	svc, ids := setup(t)
	ctx := context.Background()
	alice, bob := ids[0], ids[1]

	_, err := svc.Request(ctx, alice, alice, db.ConnectionFriend)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Request(ctx, alice, bob, "roommate")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Request(ctx, alice, 404, db.ConnectionFriend)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = svc.Request(ctx, alice, bob, db.ConnectionFriend)
	require.NoError(t, err)

	_, err = svc.Request(ctx, bob, alice, db.ConnectionEventBuddy)
	assert.Equal(t, codes.AlreadyExists, status.Code(err), "pending in the other direction counts")
}

func TestRequest_AfterDeclineIsAllowed(t *testing.T) {
	svc, ids := setup(t)
	ctx := context.Background()
	alice, bob := ids[0], ids[1]

	c, err := svc.Request(ctx, alice, bob, db.ConnectionFriend)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, c.ID, bob, db.ConnectionDeclined)
	require.NoError(t, err)

	_, err = svc.Request(ctx, alice, bob, db.ConnectionFriend)
	assert.NoError(t, err)
}

func TestRespond_Validation(t *testing.T) {
	svc, ids := setup(t)
	ctx := context.Background()

	c, err := svc.Request(ctx, ids[0], ids[1], db.ConnectionFriend)
	require.NoError(t, err)

	_, err = svc.Respond(ctx, c.ID, ids[1], db.ConnectionPending)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Respond(ctx, 999, ids[1], db.ConnectionAccepted)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestList(t *testing.T) {
	svc, ids := setup(t)
	ctx := context.Background()
	alice, bob, carol := ids[0], ids[1], ids[2]

	ab, err := svc.Request(ctx, alice, bob, db.ConnectionFriend)
	require.NoError(t, err)
	_, err = svc.Request(ctx, carol, alice, db.ConnectionDating)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, ab.ID, bob, db.ConnectionAccepted)
	require.NoError(t, err)

	all, err := svc.List(ctx, alice, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted := db.ConnectionAccepted
	only, err := svc.List(ctx, alice, &accepted)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, ab.ID, only[0].ID)

	bogus := db.ConnectionStatus("ghosted")
	_, err = svc.List(ctx, alice, &bogus)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
