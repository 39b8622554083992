package costing

import (
	"food-costing/internal/pkg/common"
)

// Field 食材可編輯的欄位
type Field string

const (
	FieldName             Field = "name"
	FieldQuantity         Field = "quantity"
	FieldUnit             Field = "unit"
	FieldPurchasePrice    Field = "purchase_price"
	FieldPurchaseUnit     Field = "purchase_unit"
	FieldConversionFactor Field = "conversion_factor"
)

var fieldAliases = map[string]Field{
	"name":              FieldName,
	"quantity":          FieldQuantity,
	"qty":               FieldQuantity,
	"unit":              FieldUnit,
	"purchase_price":    FieldPurchasePrice,
	"purchasePrice":     FieldPurchasePrice,
	"purchase_unit":     FieldPurchaseUnit,
	"purchaseUnit":      FieldPurchaseUnit,
	"conversion_factor": FieldConversionFactor,
	"conversionFactor":  FieldConversionFactor,
}

// ParseField 解析欄位名稱，同時接受 snake_case 與 camelCase
func ParseField(name string) (Field, bool) {
	f, ok := fieldAliases[name]
	return f, ok
}

// EditIngredient 套用使用者對單一欄位的編輯
//
// 名稱變更時若對應到市場品項，會帶入價格與單位並重新推算換算係數；
// 單位或採購單位變更時一律重新推算換算係數，覆蓋先前手動輸入的值。
// 數值欄位無法解析時視為 0，手動換算係數不接受負值。找不到 id 時 found 為 false。
func EditIngredient(ingredients []Ingredient, id string, field Field, value any, market []MarketItem) ([]Ingredient, bool) {
	pos := -1
	for i, ing := range ingredients {
		if ing.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ingredients, false
	}

	out := make([]Ingredient, len(ingredients))
	copy(out, ingredients)
	out[pos] = applyField(out[pos], field, value, market)
	return out, true
}

func applyField(ing Ingredient, field Field, value any, market []MarketItem) Ingredient {
	switch field {
	case FieldName:
		ing.Name = common.ToText(value)
		if item, ok := FindMarketItem(market, ing.Name); ok {
			ing = linkToMarket(ing, item)
		}
	case FieldQuantity:
		ing.Quantity = common.ParseNumber(value)
	case FieldPurchasePrice:
		ing.PurchasePrice = common.ParseNumber(value)
	case FieldConversionFactor:
		ing.ConversionFactor = max(common.ParseNumber(value), 0)
	case FieldUnit:
		ing.Unit = common.ToText(value)
		ing.ConversionFactor = ResolveConversionFactor(ing.PurchaseUnit, ing.Unit)
	case FieldPurchaseUnit:
		ing.PurchaseUnit = common.ToText(value)
		ing.ConversionFactor = ResolveConversionFactor(ing.PurchaseUnit, ing.Unit)
	}
	return ing
}
