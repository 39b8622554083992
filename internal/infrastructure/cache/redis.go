package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-costing/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "food-costing:sheet:"

// RedisStore 以 Redis 保存成本表狀態
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 連線並測試 Redis
func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get 取得狀態並刷新存活時間
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetEx(ctx, keyPrefix+key, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	return data, nil
}

// Set 保存狀態
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set sheet: %w", err)
	}
	return nil
}

// Delete 刪除狀態
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, keyPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete sheet: %w", err)
	}
	if n == 0 {
		return ErrMiss
	}
	return nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
