package market

import (
	"context"
	"slices"
	"strings"
	"sync"

	"food-costing/internal/core/costing"
	"food-costing/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 市場清單持久化
type Store interface {
	Load(ctx context.Context) ([]costing.MarketItem, error)
	Save(ctx context.Context, items []costing.MarketItem) error
}

// Patch 市場品項的部分更新，nil 欄位保持原值
type Patch struct {
	Name  *string  `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
	Unit  *string  `json:"unit,omitempty"`
}

// historyLimit 保留的歷史版本數量，超過時最舊的版本會被捨棄
const historyLimit = 64

// version 單一市場清單版本
type version struct {
	revision string
	items    []costing.MarketItem
}

// Service 市場清單的唯一擁有者
//
// 每次實際變更都會持久化並產生新的 revision。
// 最近的版本保存在 history 中，成本表依序重播錯過的每個版本。
type Service struct {
	store    Store
	mu       sync.RWMutex
	items    []costing.MarketItem
	revision string
	history  []version
}

// NewService 創建市場清單服務，呼叫 Load 之前清單為空
func NewService(store Store) *Service {
	return &Service{
		store:    store,
		revision: common.GenerateUUID(),
	}
}

// Load 從儲存讀取市場清單，讀取失敗或無資料時使用預設清單
func (s *Service) Load(ctx context.Context) []costing.MarketItem {
	items, err := s.store.Load(ctx)
	if err != nil {
		common.LogError("讀取市場清單失敗，改用預設清單", zap.Error(err))
		items = nil
	}
	if len(items) == 0 {
		items = costing.SeedMarketItems()
		common.LogInfo("使用預設市場清單", zap.Int("items", len(items)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.revision = common.GenerateUUID()
	s.history = []version{{revision: s.revision, items: cloneItems(items)}}
	return cloneItems(items)
}

// List 目前市場清單的快照
func (s *Service) List() []costing.MarketItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Revision 目前清單版本，每次實際變更都會改變
func (s *Service) Revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot 同時取得清單與版本
func (s *Service) Snapshot() ([]costing.MarketItem, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items), s.revision
}

// Changes 取得 since 之後依序產生的每個版本，以及目前清單與版本
//
// since 等於目前版本時 pending 為空。since 已不在歷史中（過舊或服務重啟）時，
// pending 只包含目前清單。
func (s *Service) Changes(since string) (pending [][]costing.MarketItem, latest []costing.MarketItem, revision string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest, revision = cloneItems(s.items), s.revision
	if since == s.revision {
		return nil, latest, revision
	}

	start := -1
	for i, v := range s.history {
		if v.revision == since {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return [][]costing.MarketItem{cloneItems(s.items)}, latest, revision
	}
	for _, v := range s.history[start:] {
		pending = append(pending, cloneItems(v.items))
	}
	return pending, latest, revision
}

// Add 新增市場品項，空白名稱與單位使用預設值
func (s *Service) Add(ctx context.Context, name string, price float64, unit string) costing.MarketItem {
	if strings.TrimSpace(name) == "" {
		name = costing.DefaultMarketItemName
	}
	if strings.TrimSpace(unit) == "" {
		unit = costing.DefaultMarketItemUnit
	}
	item := costing.MarketItem{
		ID:    common.GenerateUUID(),
		Name:  name,
		Price: price,
		Unit:  unit,
	}

	s.mutate(ctx, func(items []costing.MarketItem) ([]costing.MarketItem, bool) {
		return append(items, item), true
	})
	return item
}

// Update 更新指定品項
func (s *Service) Update(ctx context.Context, id string, patch Patch) (costing.MarketItem, error) {
	var updated costing.MarketItem
	found := false

	s.mutate(ctx, func(items []costing.MarketItem) ([]costing.MarketItem, bool) {
		for i, item := range items {
			if item.ID != id {
				continue
			}
			found = true
			next := item
			if patch.Name != nil {
				next.Name = *patch.Name
			}
			if patch.Price != nil {
				next.Price = *patch.Price
			}
			if patch.Unit != nil {
				next.Unit = *patch.Unit
			}
			updated = next
			if next == item {
				return items, false
			}
			items[i] = next
			return items, true
		}
		return items, false
	})

	if !found {
		return costing.MarketItem{}, common.ErrMarketItemNotFound
	}
	return updated, nil
}

// Remove 移除指定品項
func (s *Service) Remove(ctx context.Context, id string) error {
	found := false
	s.mutate(ctx, func(items []costing.MarketItem) ([]costing.MarketItem, bool) {
		out := items[:0]
		for _, item := range items {
			if item.ID == id {
				found = true
				continue
			}
			out = append(out, item)
		}
		return out, found
	})
	if !found {
		return common.ErrMarketItemNotFound
	}
	return nil
}

// Move 拖放排序，索引超出範圍或相同時不變更
func (s *Service) Move(ctx context.Context, from, to int) bool {
	return s.mutate(ctx, func(items []costing.MarketItem) ([]costing.MarketItem, bool) {
		return costing.MoveMarketItem(items, from, to)
	})
}

// Replace 以整份清單取代目前清單（匯入或還原），空白 ID 會補上新的 ID
func (s *Service) Replace(ctx context.Context, items []costing.MarketItem) bool {
	next := cloneItems(items)
	for i := range next {
		if strings.TrimSpace(next[i].ID) == "" {
			next[i].ID = common.GenerateUUID()
		}
	}

	return s.mutate(ctx, func(current []costing.MarketItem) ([]costing.MarketItem, bool) {
		if slices.Equal(current, next) {
			return current, false
		}
		return next, true
	})
}

// mutate 在複本上套用變更；僅在 changed 為 true 時替換清單、更新版本並持久化
func (s *Service) mutate(ctx context.Context, fn func([]costing.MarketItem) ([]costing.MarketItem, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(cloneItems(s.items))
	if !changed {
		return false
	}
	s.items = next
	s.revision = common.GenerateUUID()
	s.history = append(s.history, version{revision: s.revision, items: cloneItems(next)})
	if len(s.history) > historyLimit {
		s.history = slices.Clone(s.history[len(s.history)-historyLimit:])
	}

	// 儲存失敗只記錄，不影響目前的清單
	if err := s.store.Save(ctx, cloneItems(next)); err != nil {
		common.LogError("儲存市場清單失敗", zap.Error(err), zap.Int("items", len(next)))
	}
	return true
}

func cloneItems(items []costing.MarketItem) []costing.MarketItem {
	out := make([]costing.MarketItem, len(items))
	copy(out, items)
	return out
}
