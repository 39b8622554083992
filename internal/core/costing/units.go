package costing

import "strings"

// 單位詞彙
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMilliliter = "ml"
	UnitLiter      = "liter"
	UnitPiece      = "pc"
	UnitPieces     = "pcs"
)

// Units 介面可選的單位清單
var Units = []string{UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece, UnitPieces}

// 同類單位換算到基準單位的倍數
var (
	massUnits = map[string]float64{
		UnitKilogram: 1000,
		UnitGram:     1,
	}
	volumeUnits = map[string]float64{
		UnitLiter:      1000,
		UnitMilliliter: 1,
	}
)

// ResolveConversionFactor 推算一個採購單位等於多少配方單位
//
// 只有同屬重量或同屬容量的單位才會換算，其餘（跨類別、計件、未知單位）一律回傳 1，
// 代表需由使用者手動輸入。
func ResolveConversionFactor(purchaseUnit, recipeUnit string) float64 {
	p := strings.ToLower(purchaseUnit)
	r := strings.ToLower(recipeUnit)

	for _, class := range []map[string]float64{massUnits, volumeUnits} {
		pBase, pOK := class[p]
		rBase, rOK := class[r]
		if pOK && rOK {
			return pBase / rBase
		}
	}
	return 1
}

// IsPieceUnit 判斷是否為計件單位
func IsPieceUnit(unit string) bool {
	u := strings.ToLower(unit)
	return u == UnitPiece || u == UnitPieces
}

// RecipeUnitFor 依採購單位決定拖放新增時的配方單位
func RecipeUnitFor(purchaseUnit string) string {
	if IsPieceUnit(purchaseUnit) {
		return UnitPiece
	}
	return UnitGram
}
