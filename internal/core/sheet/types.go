package sheet

import (
	"food-costing/internal/core/costing"
)

// 新成本表與重設後的預設值
const (
	DefaultRecipeYield  = 1
	DefaultSellingPrice = 0
)

// Sheet 一份成本表的完整狀態
type Sheet struct {
	ID             string                `json:"id"`
	Ingredients    []costing.Ingredient  `json:"ingredients"`
	SellingPrice   float64               `json:"selling_price"`
	RecipeYield    float64               `json:"recipe_yield"`
	PricingMethod  costing.PricingMethod `json:"pricing_method"`
	MarketRevision string                `json:"market_revision"`
}

// Row 含計算結果的食材列
type Row struct {
	costing.Ingredient
	UnitCost      float64 `json:"unit_cost"`
	ExtensionCost float64 `json:"extension_cost"`
	Contributing  bool    `json:"contributing"`
}

// Snapshot 回傳給介面的成本表檢視
type Snapshot struct {
	ID      string          `json:"id"`
	Rows    []Row           `json:"rows"`
	Summary costing.Summary `json:"summary"`
}

// PricingUpdate 售價相關欄位的更新，nil 欄位不變更
//
// Target 依目前（或同時指定的）計價方式解讀為目標成本率或定價倍數，
// 並在 SellingPrice、RecipeYield 套用之後才計算。
type PricingUpdate struct {
	Method       *costing.PricingMethod `json:"method,omitempty"`
	SellingPrice *float64               `json:"selling_price,omitempty"`
	RecipeYield  *float64               `json:"recipe_yield,omitempty"`
	Target       *float64               `json:"target,omitempty"`
}

// NewSnapshot 計算成本表檢視
func NewSnapshot(s *Sheet) Snapshot {
	rows := make([]Row, len(s.Ingredients))
	for i, ing := range s.Ingredients {
		rows[i] = Row{
			Ingredient:    ing,
			UnitCost:      ing.UnitCost(),
			ExtensionCost: ing.ExtensionCost(),
			Contributing:  ing.IsContributing(),
		}
	}
	return Snapshot{
		ID:      s.ID,
		Rows:    rows,
		Summary: costing.Summarize(s.Ingredients, s.RecipeYield, s.SellingPrice, s.PricingMethod),
	}
}
