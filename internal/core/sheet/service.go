package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"food-costing/internal/core/costing"
	"food-costing/internal/infrastructure/cache"
	"food-costing/internal/pkg/common"

	"go.uber.org/zap"
)

// MarketSource 提供市場清單快照、版本，以及某版本之後依序產生的清單
type MarketSource interface {
	Snapshot() ([]costing.MarketItem, string)
	Changes(since string) (pending [][]costing.MarketItem, latest []costing.MarketItem, revision string)
}

// Service 成本表協調者
//
// 所有成本表的指令經由同一把鎖依序執行，每個指令都是「讀取、同步市場、套用、儲存」的完整步驟。
// 成本表上次同步之後的每個市場版本都會依序套用一次，市場同步一定在彙總計算之前完成。
type Service struct {
	store  cache.Store
	market MarketSource
	mu     sync.Mutex
	newID  func() string
}

// NewService 創建成本表服務
func NewService(store cache.Store, market MarketSource) *Service {
	return &Service{
		store:  store,
		market: market,
		newID:  common.GenerateUUID,
	}
}

// Create 建立只有一列空白食材的成本表
func (s *Service) Create(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, revision := s.market.Snapshot()
	sh := &Sheet{
		ID:             s.newID(),
		Ingredients:    costing.ResetIngredients(s.newID()),
		SellingPrice:   DefaultSellingPrice,
		RecipeYield:    DefaultRecipeYield,
		PricingMethod:  costing.PricingCostPercentage,
		MarketRevision: revision,
	}
	if err := s.save(ctx, sh); err != nil {
		return Snapshot{}, err
	}

	common.LogInfo("成本表已建立", zap.String("sheet_id", sh.ID))
	return NewSnapshot(sh), nil
}

// Get 取得成本表檢視；市場清單在上次同步後有變動時會先同步
func (s *Service) Get(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	pending, _, revision := s.market.Changes(sh.MarketRevision)
	if s.syncMarket(sh, pending) {
		sh.MarketRevision = revision
		if err := s.save(ctx, sh); err != nil {
			return Snapshot{}, err
		}
	}
	return NewSnapshot(sh), nil
}

// Delete 刪除成本表
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return common.ErrSheetNotFound
		}
		return common.ErrStorageUnavailable.Wrap(err)
	}
	return nil
}

// Reset 清空成本表：一列空白食材、售價 0、份數 1
func (s *Service) Reset(ctx context.Context, id string) (Snapshot, error) {
	return s.update(ctx, id, func(sh *Sheet, _ []costing.MarketItem) error {
		sh.Ingredients = costing.ResetIngredients(s.newID())
		sh.SellingPrice = DefaultSellingPrice
		sh.RecipeYield = DefaultRecipeYield
		return nil
	})
}

// AddIngredient 附加一列空白食材
func (s *Service) AddIngredient(ctx context.Context, id string) (Snapshot, error) {
	return s.update(ctx, id, func(sh *Sheet, _ []costing.MarketItem) error {
		sh.Ingredients = costing.AppendIngredient(sh.Ingredients, s.newID())
		return nil
	})
}

// AddFromMarket 以拖放傳入的市場品項新增食材
func (s *Service) AddFromMarket(ctx context.Context, id string, item costing.MarketItem) (Snapshot, error) {
	return s.update(ctx, id, func(sh *Sheet, _ []costing.MarketItem) error {
		sh.Ingredients = costing.AddFromMarket(sh.Ingredients, item, s.newID())
		return nil
	})
}

// EditIngredient 編輯食材的單一欄位
func (s *Service) EditIngredient(ctx context.Context, id, ingredientID, field string, value any) (Snapshot, error) {
	f, ok := costing.ParseField(field)
	if !ok {
		return Snapshot{}, common.ErrUnknownField.Wrap(fmt.Errorf("field %q", field))
	}

	return s.update(ctx, id, func(sh *Sheet, market []costing.MarketItem) error {
		next, found := costing.EditIngredient(sh.Ingredients, ingredientID, f, value, market)
		if !found {
			return common.ErrIngredientNotFound
		}
		sh.Ingredients = next
		return nil
	})
}

// RemoveIngredient 移除食材
func (s *Service) RemoveIngredient(ctx context.Context, id, ingredientID string) (Snapshot, error) {
	return s.update(ctx, id, func(sh *Sheet, _ []costing.MarketItem) error {
		next, removed := costing.RemoveIngredient(sh.Ingredients, ingredientID)
		if !removed {
			return common.ErrIngredientNotFound
		}
		sh.Ingredients = next
		return nil
	})
}

// UpdatePricing 更新計價方式、售價、份數或目標值
func (s *Service) UpdatePricing(ctx context.Context, id string, upd PricingUpdate) (Snapshot, error) {
	if upd.Method != nil && !upd.Method.Valid() {
		return Snapshot{}, common.ErrInvalidPricingMethod.Wrap(fmt.Errorf("method %q", *upd.Method))
	}

	return s.update(ctx, id, func(sh *Sheet, _ []costing.MarketItem) error {
		if upd.Method != nil {
			sh.PricingMethod = *upd.Method
		}
		if upd.SellingPrice != nil {
			sh.SellingPrice = *upd.SellingPrice
		}
		if upd.RecipeYield != nil {
			sh.RecipeYield = *upd.RecipeYield
			if sh.RecipeYield <= 0 {
				sh.RecipeYield = DefaultRecipeYield
			}
		}
		if upd.Target != nil {
			total := costing.GrandTotal(sh.Ingredients)
			if price, ok := costing.SellingPriceFromTarget(sh.PricingMethod, total, *upd.Target); ok {
				sh.SellingPrice = price
			}
		}
		return nil
	})
}

// update 讀取、同步、套用指令並儲存
func (s *Service) update(ctx context.Context, id string, fn func(sh *Sheet, market []costing.MarketItem) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	pending, market, revision := s.market.Changes(sh.MarketRevision)
	s.syncMarket(sh, pending)
	sh.MarketRevision = revision

	if err := fn(sh, market); err != nil {
		return Snapshot{}, err
	}
	if err := s.save(ctx, sh); err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(sh), nil
}

// syncMarket 依序套用每個錯過的市場版本，回傳是否有任何列被更新
func (s *Service) syncMarket(sh *Sheet, pending [][]costing.MarketItem) bool {
	changed := false
	for _, market := range pending {
		next, ok := costing.SyncMarket(sh.Ingredients, market)
		if !ok {
			continue
		}
		sh.Ingredients = next
		changed = true
	}
	if changed {
		common.LogDebug("市場清單已同步至成本表",
			zap.String("sheet_id", sh.ID),
			zap.Int("revisions", len(pending)),
		)
	}
	return changed
}

func (s *Service) load(ctx context.Context, id string) (*Sheet, error) {
	data, err := s.store.Get(ctx, id)
	if errors.Is(err, cache.ErrMiss) {
		return nil, common.ErrSheetNotFound
	}
	if err != nil {
		return nil, common.ErrStorageUnavailable.Wrap(err)
	}

	var sh Sheet
	if err := common.ParseJSONBytes(data, &sh); err != nil {
		return nil, common.ErrInternalError.Wrap(fmt.Errorf("decode sheet %s: %w", id, err))
	}
	return &sh, nil
}

func (s *Service) save(ctx context.Context, sh *Sheet) error {
	data, err := json.Marshal(sh)
	if err != nil {
		return common.ErrInternalError.Wrap(fmt.Errorf("encode sheet %s: %w", sh.ID, err))
	}
	if err := s.store.Set(ctx, sh.ID, data); err != nil {
		return common.ErrStorageUnavailable.Wrap(err)
	}
	return nil
}
