package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	requestKeyPrefix  = "carereviews:ratelimit:req:"
	banKeyPrefix      = "carereviews:ratelimit:ban:"
	banCountKeyPrefix = "carereviews:ratelimit:bancount:"
)

// RedisLimiter shares the sliding window and bans between replicas.
// Request times are kept in a sorted set per address, scored by Unix nanoseconds.
type RedisLimiter struct {
	client *redis.Client
	opts   Options
	logger *zap.Logger
	now    func() time.Time
	seq    uint64
}

// NewRedisLimiter wraps an existing client.
func NewRedisLimiter(client *redis.Client, opts Options, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		opts:   opts.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// NewRedisClient creates a client for the given address.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Allow checks and updates the rate limit for addr.
func (l *RedisLimiter) Allow(ctx context.Context, addr string) (bool, error) {
	banned, err := l.IsBanned(ctx, addr)
	if err != nil || banned {
		return false, err
	}

	now := l.now()
	key := requestKeyPrefix + addr
	member := fmt.Sprintf("%d-%d", now.UnixNano(), atomic.AddUint64(&l.seq, 1))
	cutoff := now.Add(-l.opts.Window).UnixNano()

	var card *redis.IntCmd
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now.UnixNano()), Member: member})
		card = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, l.opts.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit window: %w", err)
	}
	if card.Val() <= int64(l.opts.MaxRequests) {
		return true, nil
	}

	count, err := l.client.Incr(ctx, banCountKeyPrefix+addr).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit ban count: %w", err)
	}
	dur := l.opts.banDuration(int(count))
	ttl := dur
	if dur == permabanDuration {
		ttl = 0
	}
	pipe := l.client.TxPipeline()
	pipe.Set(ctx, banKeyPrefix+addr, strconv.FormatInt(now.Add(dur).Unix(), 10), ttl)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit ban: %w", err)
	}
	l.logger.Warn("client banned for exceeding submission rate",
		zap.String("addr", addr),
		zap.Duration("duration", dur),
		zap.Int64("violation", count),
	)
	return false, nil
}

// IsBanned reports whether a ban key exists for addr.
func (l *RedisLimiter) IsBanned(ctx context.Context, addr string) (bool, error) {
	n, err := l.client.Exists(ctx, banKeyPrefix+addr).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit ban check: %w", err)
	}
	return n > 0, nil
}

// Ping checks the Redis connection.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
