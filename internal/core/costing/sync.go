package costing

// SyncMarket 將市場清單的價格與單位同步到所有對應的食材
//
// 僅在名稱對應的市場品項價格或單位與食材不同時更新該列；沒有任何列變更時原樣回傳輸入的切片，
// changed 為 false，呼叫端可據此略過後續的儲存與通知。輸入不會被修改。
func SyncMarket(ingredients []Ingredient, market []MarketItem) ([]Ingredient, bool) {
	idx := NewMarketIndex(market)

	var out []Ingredient
	for i, ing := range ingredients {
		item, ok := idx.Lookup(ing.Name)
		if !ok || (ing.PurchasePrice == item.Price && ing.PurchaseUnit == item.Unit) {
			continue
		}
		if out == nil {
			out = make([]Ingredient, len(ingredients))
			copy(out, ingredients)
		}
		out[i] = linkToMarket(ing, item)
	}

	if out == nil {
		return ingredients, false
	}
	return out, true
}

// linkToMarket 複製市場品項的價格與單位並重新推算換算係數
func linkToMarket(ing Ingredient, item MarketItem) Ingredient {
	ing.PurchasePrice = item.Price
	ing.PurchaseUnit = item.Unit
	ing.ConversionFactor = ResolveConversionFactor(item.Unit, ing.Unit)
	return ing
}

// AddFromMarket 以拖放的市場品項新增食材
//
// 若已有空白列則就地覆寫第一個空白列，否則附加在最後。
func AddFromMarket(ingredients []Ingredient, item MarketItem, newID string) []Ingredient {
	added := NewIngredientFromMarket(newID, item)

	out := make([]Ingredient, len(ingredients), len(ingredients)+1)
	copy(out, ingredients)
	for i, ing := range out {
		if ing.IsEmpty() {
			out[i] = added
			return out
		}
	}
	return append(out, added)
}

// AppendIngredient 附加一列預設食材
func AppendIngredient(ingredients []Ingredient, newID string) []Ingredient {
	out := make([]Ingredient, len(ingredients), len(ingredients)+1)
	copy(out, ingredients)
	return append(out, NewIngredient(newID))
}

// RemoveIngredient 移除指定食材
func RemoveIngredient(ingredients []Ingredient, id string) ([]Ingredient, bool) {
	out := make([]Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.ID != id {
			out = append(out, ing)
		}
	}
	if len(out) == len(ingredients) {
		return ingredients, false
	}
	return out, true
}

// ResetIngredients 清空成本表，只保留一列空白食材
func ResetIngredients(newID string) []Ingredient {
	return []Ingredient{NewIngredient(newID)}
}
