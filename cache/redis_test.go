package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return &RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}, mr
}

func TestGetMissReturnsEmpty(t *testing.T) {
	c, _ := newTestCache(t)
	val, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, c.KeyForUser("u1"), `{"id":"u1"}`, time.Minute))

	val, err := c.Get(ctx, c.KeyForUser("u1"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u1"}`, val)

	require.NoError(t, c.Del(ctx, c.KeyForUser("u1")))
	val, err = c.Get(ctx, c.KeyForUser("u1"))
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestCrushCountRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	_, found, err := c.GetCrushCount(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetCrushCount(ctx, "u1", 7))

	n, found, err := c.GetCrushCount(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 7, n)
}

func TestBumpCrushCount(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.SetCrushCount(ctx, "u1", 2))
	require.NoError(t, c.BumpCrushCount(ctx, "u1", 1))
	require.NoError(t, c.BumpCrushCount(ctx, "u1", -2))

	n, found, err := c.GetCrushCount(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.EqualValues(t, 1, n)
}

func TestBumpColdCrushCountIsNoop(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.BumpCrushCount(ctx, "u1", 1))

	// no key materialized: the next read falls back to the database count
	_, found, err := c.GetCrushCount(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBumpAfterExpiryIsNoop(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.SetCrushCount(ctx, "u1", 9))
	mr.FastForward(2 * time.Hour)

	require.NoError(t, c.BumpCrushCount(ctx, "u1", 1))

	_, found, err := c.GetCrushCount(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCrushCountAccessRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.SetCrushCount(ctx, "u1", 3))
	mr.FastForward(55 * time.Minute)

	_, found, err := c.GetCrushCount(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)

	// the read pushed the expiry out again
	mr.FastForward(55 * time.Minute)
	_, found, err = c.GetCrushCount(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
}
