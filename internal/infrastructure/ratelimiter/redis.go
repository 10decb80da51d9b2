package ratelimiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/herald-chat/herald/internal/infrastructure/logging"
)

const redisKeyPrefix = "herald:rl:"

// RedisFixedWindow shares one window per key across gateway instances.
// The key's TTL is the window: expiry in Redis IS the hard reset, so
// the first INCR after expiry starts a fresh window at one.
type RedisFixedWindow struct {
	client *redis.Client
	limit  int64
	window time.Duration
	log    logging.Logger
}

func NewRedisFixedWindow(client *redis.Client, opts Options, log logging.Logger) *RedisFixedWindow {
	opts = opts.withDefaults()

	return &RedisFixedWindow{
		client: client,
		limit:  opts.MaxEvents,
		window: opts.Window,
		log:    log,
	}
}

func (rl *RedisFixedWindow) Allow(key string) (bool, time.Duration) {
	ctx := context.Background()
	redisKey := redisKeyPrefix + key

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: a broken limiter backend must not take chat down
		rl.log.Error(logging.Redis, logging.RateLimiting, "limiter increment failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return true, 0
	}

	if count == 1 {
		if err := rl.client.PExpire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.log.Error(logging.Redis, logging.RateLimiting, "limiter expire failed", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		return true, 0
	}

	if count > rl.limit {
		// Roll the increment back so the stored count stays capped
		if err := rl.client.Decr(ctx, redisKey).Err(); err != nil {
			rl.log.Error(logging.Redis, logging.RateLimiting, "limiter rollback failed", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}

		ttl, err := rl.client.PTTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = rl.window
		}
		return false, ttl
	}

	return true, 0
}

func (rl *RedisFixedWindow) Remaining(key string) int64 {
	ctx := context.Background()

	count, err := rl.client.Get(ctx, redisKeyPrefix+key).Int64()
	if err != nil {
		return rl.limit
	}

	remaining := rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (rl *RedisFixedWindow) Close() {
	_ = rl.client.Close()
}
