package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/oggyb/vibecheck/internal/config"
)

const (
	// CountTTL is how long an admirer count stays cached without being read.
	CountTTL = time.Hour
	// versionTTL outlives any cached count so a refill never sees a reset version.
	versionTTL = 24 * time.Hour
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// SetJSON stores v encoded as JSON under key.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, b, ttl).Err()
}

// GetJSON decodes the value under key into v. found is false on a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, v any) (found bool, err error) {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// KeyForAdmirerCount generates Redis key for a user's admirer count
func (c *RedisCache) KeyForAdmirerCount(userID uint64) string {
	return fmt.Sprintf("admirers:count:%d", userID)
}

// KeyForSession generates Redis key for a login session
func (c *RedisCache) KeyForSession(id string) string {
	return "session:" + id
}

// KeyForAdmirerVersion is bumped on every invalidation of the user's count.
func (c *RedisCache) KeyForAdmirerVersion(userID uint64) string {
	return fmt.Sprintf("admirers:version:%d", userID)
}

// AdmirerCountVersion returns the current invalidation version of a user's
// count. Read it before computing the count that is passed to SetAdmirerCount.
func (c *RedisCache) AdmirerCountVersion(ctx context.Context, userID uint64) (int64, error) {
	v, err := c.Client.Get(ctx, c.KeyForAdmirerVersion(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetAdmirerCount caches count only if no invalidation happened since
// version was read. stored reports whether the value was written.
func (c *RedisCache) SetAdmirerCount(ctx context.Context, userID uint64, count, version int64) (stored bool, err error) {
	versionKey := c.KeyForAdmirerVersion(userID)
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			// Always refresh TTL when updating
			pipe.Set(ctx, c.KeyForAdmirerCount(userID), count, CountTTL)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// AdmirerCount reads a cached count. ok is false on a miss or an unreadable value.
func (c *RedisCache) AdmirerCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	key := c.KeyForAdmirerCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, CountTTL).Err()
	return n, true, nil
}

// InvalidateAdmirerCount drops the cached count so the next read recomputes
// it, and bumps the version so in-flight refills are discarded.
func (c *RedisCache) InvalidateAdmirerCount(ctx context.Context, userID uint64) error {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		versionKey := c.KeyForAdmirerVersion(userID)
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, versionTTL)
		pipe.Del(ctx, c.KeyForAdmirerCount(userID))
		return nil
	})
	return err
}
