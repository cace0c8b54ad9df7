// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"dealsdash/internal/common/config"
	apperrors "dealsdash/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the category-name cache used by the nearby search and
// is reported by the readiness check. Only short GET/SET calls go through
// it, so the pool stays small and timeouts tight.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}
}

// Ping reports whether the category cache is reachable. A failure is not
// fatal: lookups fall through to PostgreSQL.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
