package cache

import (
	"context"
	"errors"
	"fmt"

	"food-costing/internal/infrastructure/config"
)

// ErrMiss 鍵不存在或已過期
var ErrMiss = errors.New("cache miss")

// Store 以鍵保存序列化後的成本表狀態
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open 依設定建立成本表狀態儲存
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Sheets.Backend {
	case config.SheetsMemory:
		return NewMemoryStore(cfg.Sheets), nil
	case config.SheetsRedis:
		return NewRedisStore(cfg.Redis, cfg.Sheets.TTL)
	default:
		return nil, fmt.Errorf("unsupported sheets backend %q", cfg.Sheets.Backend)
	}
}
