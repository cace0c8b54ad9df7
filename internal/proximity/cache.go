// internal/proximity/cache.go
package proximity

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"dealsdash/internal/common/logger"
	"dealsdash/internal/common/metrics"
)

const categoryKeyPrefix = "dealsdash:category:name:"

func categoryKey(name string) string { return categoryKeyPrefix + name }

// CachedCategoryResolver puts a Redis cache-aside layer in front of another
// resolver. Only successful lookups are cached. Redis failures fall through
// to the backing resolver.
type CachedCategoryResolver struct {
	next   CategoryResolver
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCategoryResolver(next CategoryResolver, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedCategoryResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCategoryResolver{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "category-cache"}),
	}
}

func (c *CachedCategoryResolver) ResolveID(ctx context.Context, name string) (string, error) {
	key := categoryKey(name)

	id, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.CategoryCacheLookups.WithLabelValues("hit").Inc()
		return id, nil
	case errors.Is(err, redis.Nil):
		metrics.CategoryCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CategoryCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("Category cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	id, err = c.next.ResolveID(ctx, name)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, id, c.ttl).Err(); err != nil {
		c.logger.Warn("Category cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return id, nil
}

// Invalidate drops cached ids for the given names. Empty names are skipped.
func (c *CachedCategoryResolver) Invalidate(ctx context.Context, names ...string) error {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			keys = append(keys, categoryKey(n))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}
