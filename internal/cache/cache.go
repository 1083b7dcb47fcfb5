// Package cache memoizes per-member ledger totals behind a redis client.
// The port is an explicit optional dependency: a nil *Cache is valid and
// every method degrades to a no-op or a direct loader call.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	verAnggota  = "koperasi:ver:anggota"
	verSimpanan = "koperasi:ver:simpanan"
	verReports  = "koperasi:ver:reports"
)

// Cache wraps redis-based caching with versioned keys. Invalidation bumps
// a scope version so stale keys simply fall out of use and expire.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New instantiates the cache helper.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// BuildKey composes a cache key from the current scope versions.
func (c *Cache) BuildKey(ctx context.Context, scopes []string, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	for _, scope := range scopes {
		ver, err := c.version(ctx, scope)
		if err != nil {
			return "", err
		}
		joined = fmt.Sprintf("%s:%d", joined, ver)
	}
	return joined, nil
}

func (c *Cache) version(ctx context.Context, key string) (int64, error) {
	ver, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// FetchJSON loads a cached value or populates it via the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SimpananScope names the scope versions guarding per-member savings totals.
func SimpananScope(anggotaID string) []string {
	return []string{verAnggota + ":" + anggotaID, verSimpanan}
}

// InvalidateAnggota bumps the per-member version.
func (c *Cache) InvalidateAnggota(ctx context.Context, anggotaID string) {
	c.bump(ctx, verAnggota+":"+anggotaID)
}

// InvalidateSimpanan bumps the savings-wide version.
func (c *Cache) InvalidateSimpanan(ctx context.Context) {
	c.bump(ctx, verSimpanan)
}

// InvalidateReports bumps the report-derived version.
func (c *Cache) InvalidateReports(ctx context.Context) {
	c.bump(ctx, verReports)
}

// InvalidateAll bumps every scope version. Member-scoped keys always carry
// the simpanan version too, so bumping it covers them without enumerating
// per-member keys.
func (c *Cache) InvalidateAll(ctx context.Context) {
	c.bump(ctx, verSimpanan)
	c.bump(ctx, verReports)
}

func (c *Cache) bump(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Incr(ctx, key).Err()
}
