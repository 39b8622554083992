package costing

// PricingMethod 售價計算方式
type PricingMethod string

const (
	// PricingCostPercentage 以目標食材成本率反推售價
	PricingCostPercentage PricingMethod = "costPercentage"
	// PricingFactor 以定價倍數反推售價
	PricingFactor PricingMethod = "factorPricing"
)

// Valid 是否為支援的計價方式
func (m PricingMethod) Valid() bool {
	return m == PricingCostPercentage || m == PricingFactor
}

// Label 匯出報表使用的名稱
func (m PricingMethod) Label() string {
	if m == PricingFactor {
		return "Factor Pricing"
	}
	return "Cost Percentage"
}

// Summary 配方彙總數字，每次讀取時重新計算
type Summary struct {
	GrandTotal                  float64       `json:"grand_total"`
	RecipeYield                 float64       `json:"recipe_yield"`
	CostPerServing              float64       `json:"cost_per_serving"`
	SellingPrice                float64       `json:"selling_price"`
	ResultingFoodCostPercentage float64       `json:"resulting_food_cost_percentage"`
	PricingFactor               float64       `json:"pricing_factor"`
	PricingMethod               PricingMethod `json:"pricing_method"`
}

// GrandTotal 加總所有計入成本的食材
func GrandTotal(ingredients []Ingredient) float64 {
	total := 0.0
	for _, ing := range ingredients {
		if !ing.IsContributing() {
			continue
		}
		total += ing.ExtensionCost()
	}
	return total
}

// CostPerServing 每份成本
func CostPerServing(grandTotal, recipeYield float64) float64 {
	if recipeYield <= 0 {
		return 0
	}
	return grandTotal / recipeYield
}

// FoodCostPercentage 實際食材成本率（百分比）
func FoodCostPercentage(grandTotal, sellingPrice float64) float64 {
	if sellingPrice <= 0 {
		return 0
	}
	return grandTotal / sellingPrice * 100
}

// Factor 售價相對於總成本的倍數
func Factor(grandTotal, sellingPrice float64) float64 {
	if grandTotal <= 0 || sellingPrice <= 0 {
		return 0
	}
	return sellingPrice / grandTotal
}

// Summarize 計算配方彙總
func Summarize(ingredients []Ingredient, recipeYield, sellingPrice float64, method PricingMethod) Summary {
	total := GrandTotal(ingredients)
	return Summary{
		GrandTotal:                  total,
		RecipeYield:                 recipeYield,
		CostPerServing:              CostPerServing(total, recipeYield),
		SellingPrice:                sellingPrice,
		ResultingFoodCostPercentage: FoodCostPercentage(total, sellingPrice),
		PricingFactor:               Factor(total, sellingPrice),
		PricingMethod:               method,
	}
}

// SellingPriceFromPercentage 以目標成本率反推售價
//
// 目標值或總成本非正數時不變更，ok 為 false。
func SellingPriceFromPercentage(grandTotal, percentage float64) (float64, bool) {
	if percentage <= 0 || grandTotal <= 0 {
		return 0, false
	}
	return grandTotal / (percentage / 100), true
}

// SellingPriceFromFactor 以定價倍數反推售價
func SellingPriceFromFactor(grandTotal, factor float64) (float64, bool) {
	if factor <= 0 || grandTotal <= 0 {
		return 0, false
	}
	return grandTotal * factor, true
}

// SellingPriceFromTarget 依計價方式反推售價
func SellingPriceFromTarget(method PricingMethod, grandTotal, target float64) (float64, bool) {
	if method == PricingFactor {
		return SellingPriceFromFactor(grandTotal, target)
	}
	return SellingPriceFromPercentage(grandTotal, target)
}
