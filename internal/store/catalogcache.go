// internal/store/catalogcache.go
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"talent-engine/internal/common/logger"
	"talent-engine/internal/common/metrics"
)

// CacheResolver is any resolver the cache can sit in front of; in practice
// the postgres store.
type CacheResolver interface {
	SkillNames(ctx context.Context, catalogIDs []string) (map[string]string, error)
}

// CachedCatalog is a read-through cache over the skill catalog. One redis
// key per catalog id; misses fall through to the inner resolver in a single
// batch and are written back with the configured TTL. The cache is owned by
// the caller and passed in; the engine itself stays stateless.
type CachedCatalog struct {
	inner  CacheResolver
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCatalog(inner CacheResolver, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedCatalog {
	return &CachedCatalog{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func cacheKey(catalogID string) string {
	return "skill:catalog:" + catalogID
}

// SkillNames resolves ids from redis first and the inner resolver for the
// rest. Redis failures degrade to a plain fetch; the catalog is small and a
// cold cache is not an error.
func (c *CachedCatalog) SkillNames(ctx context.Context, catalogIDs []string) (map[string]string, error) {
	if len(catalogIDs) == 0 {
		return map[string]string{}, nil
	}

	out := make(map[string]string, len(catalogIDs))
	var misses []string

	keys := make([]string, len(catalogIDs))
	for i, id := range catalogIDs {
		keys[i] = cacheKey(id)
	}
	vals, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("catalog cache read failed, falling through", map[string]interface{}{
			"error": err.Error(),
		})
		misses = catalogIDs
	} else {
		for i, v := range vals {
			name, ok := v.(string)
			if !ok || name == "" {
				misses = append(misses, catalogIDs[i])
				metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
				continue
			}
			out[catalogIDs[i]] = name
			metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
		}
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.inner.SkillNames(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, name := range fetched {
		out[id] = name
		if err := c.redis.Set(ctx, cacheKey(id), name, c.ttl).Err(); err != nil {
			c.logger.Debug("catalog cache write failed", map[string]interface{}{
				"catalogId": id,
				"error":     err.Error(),
			})
		}
	}
	return out, nil
}

// Invalidate drops cached names, for catalog edits that cannot wait out
// the TTL.
func (c *CachedCatalog) Invalidate(ctx context.Context, catalogIDs []string) error {
	if len(catalogIDs) == 0 {
		return nil
	}
	keys := make([]string, len(catalogIDs))
	for i, id := range catalogIDs {
		keys[i] = cacheKey(id)
	}
	return c.redis.Del(ctx, keys...).Err()
}
