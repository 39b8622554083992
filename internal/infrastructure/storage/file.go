package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"food-costing/internal/core/costing"
	"food-costing/internal/pkg/common"
)

// FileStore 以 JSON 檔保存市場清單
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 建立檔案儲存
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load 讀取清單，檔案不存在時回傳空清單
func (s *FileStore) Load(ctx context.Context) ([]costing.MarketItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open market file: %w", err)
	}
	defer f.Close()

	var items []costing.MarketItem
	if err := common.DecodeJSON(f, &items); err != nil {
		return nil, fmt.Errorf("parse market file: %w", err)
	}
	return items, nil
}

// Save 寫入暫存檔後再更名，避免寫到一半的檔案
func (s *FileStore) Save(ctx context.Context, items []costing.MarketItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []costing.MarketItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode market list: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".market-*.json")
	if err != nil {
		return fmt.Errorf("create temp market file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write market file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close market file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace market file: %w", err)
	}
	return nil
}

// Close 檔案儲存無需釋放資源
func (s *FileStore) Close() error {
	return nil
}
