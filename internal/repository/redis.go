package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/config"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "gateway:response:"

// RedisResponseCache stores upstream GET bodies under a shared prefix.
type RedisResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisResponseCache(client *redis.Client, ttl time.Duration) *RedisResponseCache {
	return &RedisResponseCache{client: client, ttl: ttl}
}

func (r *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached response: %w", err)
	}
	return val, true, nil
}

func (r *RedisResponseCache) Set(ctx context.Context, key string, body []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, cacheKeyPrefix+key, body, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// Flush drops every cached response; other keys in the same database are left alone.
func (r *RedisResponseCache) Flush(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	iter := r.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached responses: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush cached responses: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
