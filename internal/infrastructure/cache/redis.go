package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scamshield-lab/internal/config"
	"scamshield-lab/pkg/logger"
)

// Key namespaces, applied under the configured key prefix.
const (
	KeyRateLimitPrefix = "rate_limit:"
	KeyStatsPrefix     = "stats:days:"
)

// RedisCache backs the statistics response cache and the API rate limiter.
// Every key is written under keyPrefix so several deployments can share one
// Redis database.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis dials Redis and fails fast when the server does not answer PING
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr(), err)
	}

	log.Info().Str("addr", cfg.Addr()).Int("db", cfg.DB).Str("prefix", cfg.KeyPrefix).Msg("redis ready")
	return &RedisCache{client: client, keyPrefix: cfg.KeyPrefix, logger: log}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// IsMiss reports whether err means the key does not exist
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

// StatsKey is the cache key for a statistics window
func StatsKey(days int) string {
	return fmt.Sprintf("%s%d", KeyStatsPrefix, days)
}

// GetJSON decodes the value stored at key into dest. A missing key returns
// an error satisfying IsMiss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value as JSON. A zero ttl keeps the key forever.
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, c.key(key), raw, ttl).Err()
}

// CheckRateLimit counts one request for client in the current fixed window.
// It returns whether the request is allowed, how many remain, and when the
// window resets.
func (c *RedisCache) CheckRateLimit(ctx context.Context, client string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	slot := now.Truncate(window)
	k := c.key(fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, client, slot.Unix()))

	var count *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		count = p.Incr(ctx, k)
		p.Expire(ctx, k, window)
		return nil
	})
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit %s: %w", client, err)
	}

	n := count.Val()
	return n <= limit, max(limit-n, 0), slot.Add(window), nil
}
