package lbcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/redis/go-redis/v9"
)

const (
	genKeyTpl   = "lb:%s:gen"   // lb:${track}:gen
	valueKeyTpl = "lb:%s:%d:%s" // lb:${track}:${gen}:${key}
)

// Redis shares cached leaderboard reads between instances. Each track has a
// generation counter embedded in its value keys; invalidation bumps the
// counter and old values age out with their TTL.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis wraps an existing client. ttl <= 0 uses DefaultTTL.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

func (c *Redis) generation(ctx context.Context, track string) (int64, error) {
	s, err := c.rdb.Get(ctx, fmt.Sprintf(genKeyTpl, trackcatalog.Slug(track))).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation: %w", err)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad generation %q: %w", s, err)
	}
	return n, nil
}

func (c *Redis) Get(ctx context.Context, track, key string) ([]byte, int64, bool, error) {
	gen, err := c.generation(ctx, track)
	if err != nil {
		return nil, 0, false, err
	}
	b, err := c.rdb.Get(ctx, c.valueKey(track, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("failed to read cache: %w", err)
	}
	return b, gen, true, nil
}

// Set writes under gen, the generation the caller read before loading val.
// If the track has been invalidated since, the key is already unreachable.
func (c *Redis) Set(ctx context.Context, track, key string, gen int64, val []byte) error {
	if err := c.rdb.Set(ctx, c.valueKey(track, gen, key), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (c *Redis) valueKey(track string, gen int64, key string) string {
	return fmt.Sprintf(valueKeyTpl, trackcatalog.Slug(track), gen, key)
}

func (c *Redis) InvalidateTrack(ctx context.Context, track string) error {
	if err := c.rdb.Incr(ctx, fmt.Sprintf(genKeyTpl, trackcatalog.Slug(track))).Err(); err != nil {
		return fmt.Errorf("failed to invalidate: %w", err)
	}
	return nil
}
