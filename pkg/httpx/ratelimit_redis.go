package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window counter shared by every replica talking
// to the same redis. Each key gets one counter per window which expires
// with it.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter returns a limiter storing counters under
// "ratelimit:{scope}:{key}". Scope keeps separate routes from sharing a
// budget.
func NewRedisLimiter(client redis.UniversalClient, scope string, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:" + scope + ":",
		limit:  int64(config.RequestsPerWindow),
		window: config.Window,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := rl.prefix + key

	n, err := rl.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit incr: %w", err)
	}
	if n == 1 {
		if err := rl.client.Expire(ctx, k, rl.window).Err(); err != nil {
			return false, 0, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	if n <= rl.limit {
		return true, 0, nil
	}

	ttl, err := rl.client.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit ttl: %w", err)
	}
	if ttl < 0 {
		// A counter without expiry would block forever, repair it.
		_ = rl.client.Expire(ctx, k, rl.window).Err()
		ttl = rl.window
	}
	return false, ttl, nil
}
