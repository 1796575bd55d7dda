package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, limit int64, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLimiter(rdb, "login", limit, window), mr
}

func TestDisabledLimiterNeverBlocks(t *testing.T) {
	ctx := context.Background()

	for _, l := range []*Limiter{nil, NewLimiter(nil, "login", 3, time.Minute)} {
		for i := 0; i < 10; i++ {
			assert.NoError(t, l.Hit(ctx, "1.2.3.4:alice"))
		}
		blocked, err := l.Blocked(ctx, "1.2.3.4:alice")
		assert.NoError(t, err)
		assert.False(t, blocked)
		assert.NoError(t, l.Reset(ctx, "1.2.3.4:alice"))
	}
}

func TestKeyFormat(t *testing.T) {
	l := NewLimiter(nil, "login", 3, time.Minute)
	assert.Equal(t, "rate_limit:login:ip:alice", l.key("ip:alice"))
}

func TestBlockedAtLimit(t *testing.T) {
	l, mr := newRedisLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		blocked, err := l.Blocked(ctx, "ip|alice")
		require.NoError(t, err)
		assert.False(t, blocked, "before hit %d", i+1)
		require.NoError(t, l.Hit(ctx, "ip|alice"))
	}

	blocked, err := l.Blocked(ctx, "ip|alice")
	require.NoError(t, err)
	assert.True(t, blocked)

	other, err := l.Blocked(ctx, "ip|bob")
	require.NoError(t, err)
	assert.False(t, other)

	count, err := mr.Get("rate_limit:login:ip|alice")
	require.NoError(t, err)
	assert.Equal(t, "3", count)
}

func TestResetClearsBlock(t *testing.T) {
	l, mr := newRedisLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Hit(ctx, "ip|alice"))
	require.NoError(t, l.Hit(ctx, "ip|alice"))
	blocked, err := l.Blocked(ctx, "ip|alice")
	require.NoError(t, err)
	require.True(t, blocked)

	require.NoError(t, l.Reset(ctx, "ip|alice"))
	assert.False(t, mr.Exists("rate_limit:login:ip|alice"))

	blocked, err = l.Blocked(ctx, "ip|alice")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestWindowStartsAtFirstFailure(t *testing.T) {
	l, mr := newRedisLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Hit(ctx, "ip|alice"))
	mr.FastForward(40 * time.Second)
	require.NoError(t, l.Hit(ctx, "ip|alice"))

	blocked, err := l.Blocked(ctx, "ip|alice")
	require.NoError(t, err)
	require.True(t, blocked)

	ttl, err := l.TTL(ctx, "ip|alice")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, ttl)

	mr.FastForward(20 * time.Second)
	blocked, err = l.Blocked(ctx, "ip|alice")
	require.NoError(t, err)
	assert.False(t, blocked)

	ttl, err = l.TTL(ctx, "ip|alice")
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Duration(0))
}

func TestRedisFailureSurfaces(t *testing.T) {
	l, mr := newRedisLimiter(t, 2, time.Minute)
	mr.SetError("ERR backend down")

	_, err := l.Blocked(context.Background(), "ip|alice")
	assert.Error(t, err)
	assert.Error(t, l.Hit(context.Background(), "ip|alice"))
}
