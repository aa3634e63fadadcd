package rediscache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/FoodTrack/internal/cache"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisCache implements cache.Cache. Backend failures are logged and turned
// into misses / no-ops, callers never see them.
type RedisCache struct {
	c   *redis.Client
	log *slog.Logger
}

var _ cache.Cache = (*RedisCache)(nil)

func New(addr string) *RedisCache {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}))
}

func NewWithClient(c *redis.Client) *RedisCache {
	return &RedisCache{c: c, log: slog.With("component", "rediscache")}
}

// Connect pings the backend with a bounded exponential backoff. The caller
// falls back to the no-op cache when it returns an error.
func Connect(ctx context.Context, addr string, attempts uint64) (*RedisCache, error) {
	rc := New(addr)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	err := backoff.Retry(func() error {
		return rc.c.Ping(ctx).Err()
	}, backoff.WithContext(backoff.WithMaxRetries(b, attempts), ctx))
	if err != nil {
		_ = rc.c.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return rc, nil
}

// Client exposes the shared connection pool (the rate limiter reuses it).
func (r *RedisCache) Client() *redis.Client {
	return r.c
}

func (r *RedisCache) Close() error {
	return r.c.Close()
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warn("redis get", "key", key, "error", err.Error())
		return nil, false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.c.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn("redis set", "key", key, "error", err.Error())
	}
}

func (r *RedisCache) Remove(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.c.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("redis del", "keys", keys, "error", err.Error())
	}
}

// RemoveByPrefix walks the keyspace with SCAN MATCH, so its cost grows with
// the total number of keys rather than with the number of matches. Keys are
// collected before any DEL so the cursor never runs over a shrinking keyspace.
func (r *RedisCache) RemoveByPrefix(ctx context.Context, prefix string) {
	if prefix == "" {
		return
	}
	var keys []string
	iter := r.c.Scan(ctx, 0, escapeGlob(prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("redis scan", "prefix", prefix, "error", err.Error())
		return
	}
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		r.Remove(ctx, keys[start:end]...)
	}
}

func (r *RedisCache) Exists(ctx context.Context, key string) bool {
	n, err := r.c.Exists(ctx, key).Result()
	if err != nil {
		r.log.Warn("redis exists", "key", key, "error", err.Error())
		return false
	}
	return n > 0
}

func escapeGlob(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`).Replace(s)
}
