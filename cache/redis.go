package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"campusmatch/config"
)

// counterTTL bounds how long a cached crush count lives without access.
const counterTTL = time.Hour

// RedisCache wraps the shared Redis client. It backs the inbound-crush
// counter, cached profile reads and the API rate limiter.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{Addr: cfg.RedisAddr}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForUser is the cache key for a serialized user document.
func (c *RedisCache) KeyForUser(publicID string) string {
	return "user:" + publicID
}

// KeyForCrushCount is the cache key for a user's inbound crush counter.
func (c *RedisCache) KeyForCrushCount(publicID string) string {
	return "crushes:count:" + publicID
}

// GetCrushCount returns the cached counter. found=false means cache miss.
// The TTL is refreshed on access since the user is evidently active.
func (c *RedisCache) GetCrushCount(ctx context.Context, publicID string) (int64, bool, error) {
	key := c.KeyForCrushCount(publicID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	_ = c.Client.Expire(ctx, key, counterTTL).Err()
	return n, true, nil
}

func (c *RedisCache) SetCrushCount(ctx context.Context, publicID string, count int64) error {
	return c.Client.Set(ctx, c.KeyForCrushCount(publicID), count, counterTTL).Err()
}

// BumpCrushCount adjusts the cached counter if present, refreshing its TTL.
// A missing or expired key is left untouched: incrementing it would seed the
// counter at the delta while the database holds the real count, so the next
// read repopulates it from there instead. Cache errors are deliberately
// swallowed by callers: the database count is the source of truth.
func (c *RedisCache) BumpCrushCount(ctx context.Context, publicID string, delta int64) error {
	key := c.KeyForCrushCount(publicID)
	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return nil
	}
	if delta >= 0 {
		err = c.Client.IncrBy(ctx, key, delta).Err()
	} else {
		err = c.Client.DecrBy(ctx, key, -delta).Err()
	}
	if err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, counterTTL).Err()
}
