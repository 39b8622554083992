package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"food-costing/internal/core/costing"
	"food-costing/internal/infrastructure/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// marketItemRecord market_items 資料表
type marketItemRecord struct {
	ID        string  `gorm:"primaryKey;size:64"`
	Position  int     `gorm:"index;not null"`
	Name      string  `gorm:"size:255;not null"`
	Price     float64 `gorm:"not null"`
	Unit      string  `gorm:"size:32;not null"`
	UpdatedAt time.Time
}

// TableName 指定資料表名稱
func (marketItemRecord) TableName() string {
	return "market_items"
}

// OpenDatabase 依設定開啟 sqlite 或 postgres 連線
func OpenDatabase(cfg config.StorageConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database dsn must not be empty")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.StoragePostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.StorageSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// GormStore 以資料庫保存市場清單
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 建立並遷移 market_items 資料表
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	if err := db.AutoMigrate(&marketItemRecord{}); err != nil {
		return nil, fmt.Errorf("migrate market_items: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Load 依 position 順序讀取市場清單
func (s *GormStore) Load(ctx context.Context) ([]costing.MarketItem, error) {
	var records []marketItemRecord
	if err := s.db.WithContext(ctx).Order("position asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load market items: %w", err)
	}

	items := make([]costing.MarketItem, len(records))
	for i, r := range records {
		items[i] = costing.MarketItem{ID: r.ID, Name: r.Name, Price: r.Price, Unit: r.Unit}
	}
	return items, nil
}

// Save 以單一交易覆寫整份清單
func (s *GormStore) Save(ctx context.Context, items []costing.MarketItem) error {
	records := make([]marketItemRecord, len(items))
	for i, item := range items {
		records[i] = marketItemRecord{
			ID:       item.ID,
			Position: i,
			Name:     item.Name,
			Price:    item.Price,
			Unit:     item.Unit,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&marketItemRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("save market items: %w", err)
	}
	return nil
}

// Close 關閉資料庫連線
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 檢查資料庫連線
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
