package storage

import (
	"context"
	"fmt"

	"food-costing/internal/core/costing"
	"food-costing/internal/infrastructure/config"
)

// MarketStore 市場清單的持久化介面，保留品項順序
type MarketStore interface {
	Load(ctx context.Context) ([]costing.MarketItem, error)
	Save(ctx context.Context, items []costing.MarketItem) error
	Close() error
}

// Open 依設定建立市場清單儲存
func Open(cfg config.StorageConfig) (MarketStore, error) {
	switch cfg.Driver {
	case config.StorageSQLite, config.StoragePostgres:
		db, err := OpenDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db)
	case config.StorageFile:
		return NewFileStore(cfg.FilePath), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
