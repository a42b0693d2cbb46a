// Package cache memoises recommendation results in Redis. Keys include the
// snapshot version, so an entry can never outlive the snapshot it was
// computed against; the refresher also flushes the prefix after each publish.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	pkgredis "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/redis"
)

const keyPrefix = "recommend:"

// Backend is the subset of the Redis client the cache needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// ResultCache stores values of type T. Concurrent misses for one key share
// a single computation.
type ResultCache[T any] struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
}

func New[T any](backend Backend, ttl time.Duration) *ResultCache[T] {
	return &ResultCache[T]{
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default().With("component", "result-cache"),
	}
}

func (c *ResultCache[T]) get(ctx context.Context, key string) (T, bool) {
	var zero T
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return zero, false
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return zero, false
	}
	return result, true
}

func (c *ResultCache[T]) set(ctx context.Context, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached value for (version, skills, topK) or runs
// compute and stores its result. The bool reports a cache hit. Cache
// failures degrade to computing directly.
func (c *ResultCache[T]) GetOrCompute(
	ctx context.Context,
	version string,
	skills textnorm.Set,
	topK int,
	compute func() (T, error),
) (T, bool, error) {
	key := BuildKey(version, skills, topK)
	if result, ok := c.get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return val.(T), false, nil
}

// Invalidate deletes every cached result.
func (c *ResultCache[T]) Invalidate(ctx context.Context) error {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating result cache: %w", err)
	}
	c.logger.Info("result cache invalidated", "keys_deleted", deleted)
	return nil
}

// BuildKey hashes the snapshot version, limit and sorted skill set.
func BuildKey(version string, skills textnorm.Set, topK int) string {
	raw := fmt.Sprintf("%s|k=%d|%s", version, topK, strings.Join(skills.Sorted(), ","))
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
