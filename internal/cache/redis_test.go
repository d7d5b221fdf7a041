package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/vibecheck/internal/cache"
	"github.com/oggyb/vibecheck/internal/config"
)

func newCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
	return c, mr
}

func TestAdmirerCount(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	_, ok, err := c.AdmirerCount(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache is a miss")

	v, err := c.AdmirerCountVersion(ctx, 7)
	require.NoError(t, err)
	stored, err := c.SetAdmirerCount(ctx, 7, 3, v)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, cache.CountTTL, mr.TTL("admirers:count:7"))

	mr.FastForward(30 * time.Minute)
	n, ok, err := c.AdmirerCount(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, cache.CountTTL, mr.TTL("admirers:count:7"), "reads refresh the TTL")

	require.NoError(t, c.InvalidateAdmirerCount(ctx, 7))
	_, ok, err = c.AdmirerCount(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdmirerCount_RefillAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	// a reader takes the version, then a like invalidates before it writes back
	v, err := c.AdmirerCountVersion(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, c.InvalidateAdmirerCount(ctx, 7))

	stored, err := c.SetAdmirerCount(ctx, 7, 3, v)
	require.NoError(t, err)
	assert.False(t, stored)

	_, ok, err := c.AdmirerCount(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok, "stale count must not be cached")

	// a reader that started after the invalidation may fill the cache
	v, err = c.AdmirerCountVersion(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	stored, err = c.SetAdmirerCount(ctx, 7, 4, v)
	require.NoError(t, err)
	assert.True(t, stored)

	n, ok, err := c.AdmirerCount(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), n)
}

func TestAdmirerCount_GarbageIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, mr.Set("admirers:count:1", "not-a-number"))
	_, ok, err := c.AdmirerCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSON(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	type payload struct {
		UserID   uint64 `json:"user_id"`
		Username string `json:"username"`
	}

	var got payload
	found, err := c.GetJSON(ctx, c.KeyForSession("abc"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, c.KeyForSession("abc"), payload{UserID: 4, Username: "dana"}, time.Minute))
	assert.True(t, mr.Exists("session:abc"))

	found, err = c.GetJSON(ctx, c.KeyForSession("abc"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{UserID: 4, Username: "dana"}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, c.KeyForSession("abc"), &got)
	require.NoError(t, err)
	assert.False(t, found, "expired")
}
