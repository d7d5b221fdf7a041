package message_test

import (
	"context"
	"strings"
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
	"github.com/oggyb/vibecheck/internal/service/message"
)

type fixture struct {
	svc            *message.Service
	store          *memory.Store
	match          *db.Match
	a, b, outsider uint64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	ids := make([]uint64, 0, 3)
	for _, name := range []string{"alice", "bob", "eve"} {
		u := &db.User{Username: name, Active: true}
		require.NoError(t, store.CreateUser(ctx, u))
		ids = append(ids, u.ID)
	}

	m := db.NewMatch(ids[0], ids[1], 80)
	_, err := store.CreateMatch(ctx, m)
	require.NoError(t, err)

	appCtx := app.New(config.New(), store, nil, logger.Discard())
	return &fixture{
		svc:      message.NewService(appCtx),
		store:    store,
		match:    m,
		a:        ids[0],
		b:        ids[1],
		outsider: ids[2],
	}
}

func TestSendAndList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, f.match.ID, f.a, "  have you heard the new Khruangbin?  ")
	require.NoError(t, err)
	assert.Equal(t, "have you heard the new Khruangbin?", msg.Content)
	assert.NotZero(t, msg.ID)

	_, err = f.svc.Send(ctx, f.match.ID, f.b, "on repeat")
	require.NoError(t, err)

	msgs, next, err := f.svc.List(ctx, f.match.ID, f.b, nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, msgs, 2)
	assert.Equal(t, f.a, msgs[0].SenderID)
	assert.Equal(t, f.b, msgs[1].SenderID)
}

func TestSend_OnlyParticipants(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.match.ID, f.outsider, "hi")
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, _, err = f.svc.List(ctx, f.match.ID, f.outsider, nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestSend_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.match.ID, f.a, "   ")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.Send(ctx, f.match.ID, f.a, strings.Repeat("♪", message.MaxContentLength+1))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.Send(ctx, f.match.ID, f.a, strings.Repeat("♪", message.MaxContentLength))
	assert.NoError(t, err, "length counts characters, not bytes")

	_, err = f.svc.Send(ctx, 0, f.a, "hi")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.Send(ctx, 999, f.a, "hi")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestList_Pages(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < message.PageSize+3; i++ {
		_, err := f.svc.Send(ctx, f.match.ID, f.a, "beat")
		require.NoError(t, err)
	}

	first, next, err := f.svc.List(ctx, f.match.ID, f.a, nil)
	require.NoError(t, err)
	assert.Len(t, first, message.PageSize)
	require.NotNil(t, next)

	rest, next, err := f.svc.List(ctx, f.match.ID, f.a, next)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
	assert.Nil(t, next)
	assert.Greater(t, rest[0].ID, first[len(first)-1].ID)
}
