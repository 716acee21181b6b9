package resource

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"convert-service/pkg/config"
	"convert-service/pkg/logger"
)

var (
	redisResourceOnce sync.Once
	redisSingleton    *RedisResource
)

// RedisResource manages the lifecycle of the shared progress-cache client.
type RedisResource struct {
	client *redis.Client
}

// DefaultRedisResource returns the global Redis resource instance.
func DefaultRedisResource() *RedisResource {
	redisResourceOnce.Do(func() {
		redisSingleton = &RedisResource{}
	})
	return redisSingleton
}

func (r *RedisResource) Name() string { return "redis" }

// MustOpen connects and validates the Redis connection.
func (r *RedisResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before RedisResource")
	}

	client, err := openRedis(cfg.Redis)
	if err != nil {
		panic(fmt.Sprintf("failed to connect redis: %v", err))
	}

	r.client = client
	logger.Info("Redis resource initialized", map[string]interface{}{
		"addr": cfg.Redis.GetRedisAddr(),
		"db":   cfg.Redis.DB,
	})
}

// openRedis builds a client from the redis config section and pings it once.
func openRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  durationOr(cfg.DialTimeout, 5*time.Second),
		ReadTimeout:  durationOr(cfg.ReadTimeout, 3*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 3*time.Second),
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

// GetClient returns the shared Redis client.
func (r *RedisResource) GetClient() *redis.Client {
	return r.client
}

func (r *RedisResource) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}
