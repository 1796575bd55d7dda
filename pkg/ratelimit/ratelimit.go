package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts failures per key inside a fixed window. A nil Limiter or a
// Limiter without a Redis client never blocks.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewLimiter(rdb *redis.Client, prefix string, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (l *Limiter) key(key string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.prefix, key)
}

func (l *Limiter) enabled() bool {
	return l != nil && l.rdb != nil && l.limit > 0
}

// Blocked reports whether key has reached the limit in the current window.
func (l *Limiter) Blocked(ctx context.Context, key string) (bool, error) {
	if !l.enabled() {
		return false, nil
	}

	count, err := l.rdb.Get(ctx, l.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return count >= l.limit, nil
}

// Hit records one failure for key. The window starts at the first failure.
func (l *Limiter) Hit(ctx context.Context, key string) error {
	if !l.enabled() {
		return nil
	}

	k := l.key(key)
	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("failed to increment rate limit in redis: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return nil
}

// TTL returns how long key stays blocked.
func (l *Limiter) TTL(ctx context.Context, key string) (time.Duration, error) {
	if !l.enabled() {
		return 0, nil
	}
	return l.rdb.TTL(ctx, l.key(key)).Result()
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	if !l.enabled() {
		return nil
	}
	_, err := l.rdb.Del(ctx, l.key(key)).Result()
	return err
}
