package costing

import "strings"

// Ingredient 成本表中的一列食材
type Ingredient struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	PurchasePrice    float64 `json:"purchase_price"`
	PurchaseUnit     string  `json:"purchase_unit"`
	ConversionFactor float64 `json:"conversion_factor"`
}

// NewIngredient 建立一列預設的空白食材
func NewIngredient(id string) Ingredient {
	return Ingredient{
		ID:               id,
		Quantity:         1,
		Unit:             UnitGram,
		PurchaseUnit:     UnitKilogram,
		ConversionFactor: ResolveConversionFactor(UnitKilogram, UnitGram),
	}
}

// NewIngredientFromMarket 由市場品項建立食材
func NewIngredientFromMarket(id string, item MarketItem) Ingredient {
	unit := RecipeUnitFor(item.Unit)
	return Ingredient{
		ID:               id,
		Name:             item.Name,
		Quantity:         1,
		Unit:             unit,
		PurchasePrice:    item.Price,
		PurchaseUnit:     item.Unit,
		ConversionFactor: ResolveConversionFactor(item.Unit, unit),
	}
}

// UnitCost 每一配方單位的成本
func (i Ingredient) UnitCost() float64 {
	if i.ConversionFactor <= 0 {
		return 0
	}
	return i.PurchasePrice / i.ConversionFactor
}

// ExtensionCost 此食材在配方用量下的總成本
func (i Ingredient) ExtensionCost() float64 {
	return i.UnitCost() * i.Quantity
}

// IsContributing 是否計入總成本
func (i Ingredient) IsContributing() bool {
	return i.Name != "" && i.Quantity > 0 && i.PurchasePrice > 0 && i.ConversionFactor > 0
}

// IsEmpty 尚未填寫的空白列（名稱空白且價格為零）
func (i Ingredient) IsEmpty() bool {
	return strings.TrimSpace(i.Name) == "" && i.PurchasePrice == 0
}

// joinKey 市場清單比對用的名稱鍵
func joinKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
