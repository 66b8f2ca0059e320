package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gas-stock/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

// InitCache connects to Redis when REDIS_ADDR is set. Without an address,
// or when Redis does not answer, the service runs without cache.
func InitCache(config utils.RedisConfig, log *zap.Logger) (Cache, func()) {
	if config.Addr == "" {
		log.Info("Redis not configured, running without cache")
		return Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis connection failed, running without cache",
			zap.Error(err),
			zap.String("addr", config.Addr),
		)
		client.Close()
		return Noop{}, func() {}
	}

	log.Info("Redis connected", zap.String("addr", config.Addr))
	return NewRedisCache(client), func() { client.Close() }
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
