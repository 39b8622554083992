package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMarket_UpdatesLinkedRows(t *testing.T) {
	ings := []Ingredient{
		{ID: "a", Name: "flour", Quantity: 200, Unit: UnitGram, PurchasePrice: 60, PurchaseUnit: UnitKilogram, ConversionFactor: 1000},
		{ID: "b", Name: "Vanilla", Quantity: 1, Unit: UnitMilliliter, PurchasePrice: 300, PurchaseUnit: UnitLiter, ConversionFactor: 1000},
	}
	market := []MarketItem{{ID: "1", Name: "Flour", Price: 80, Unit: UnitKilogram}}

	got, changed := SyncMarket(ings, market)
	require.True(t, changed)
	assert.Equal(t, 80.0, got[0].PurchasePrice)
	assert.Equal(t, ings[1], got[1], "unlinked rows keep their values")
	assert.Equal(t, 60.0, ings[0].PurchasePrice, "input must not be modified")
}

func TestSyncMarket_UnitChangeRecomputesFactor(t *testing.T) {
	ings := []Ingredient{
		{ID: "a", Name: "Milk", Quantity: 250, Unit: UnitMilliliter, PurchasePrice: 70, PurchaseUnit: UnitLiter, ConversionFactor: 1000},
	}
	market := []MarketItem{{ID: "5", Name: "Milk", Price: 0.07, Unit: UnitMilliliter}}

	got, changed := SyncMarket(ings, market)
	require.True(t, changed)
	assert.Equal(t, UnitMilliliter, got[0].PurchaseUnit)
	assert.Equal(t, 1.0, got[0].ConversionFactor)
}

func TestSyncMarket_NoChangeReturnsInput(t *testing.T) {
	ings := []Ingredient{
		{ID: "a", Name: "Flour", Quantity: 200, Unit: UnitGram, PurchasePrice: 80, PurchaseUnit: UnitKilogram, ConversionFactor: 1000},
		NewIngredient("b"),
	}

	got, changed := SyncMarket(ings, SeedMarketItems())
	assert.False(t, changed)
	assert.Same(t, &ings[0], &got[0])
}

func TestSyncMarket_Idempotent(t *testing.T) {
	ings := []Ingredient{
		{ID: "a", Name: "Sugar", Quantity: 100, Unit: UnitGram, PurchasePrice: 1, PurchaseUnit: UnitGram, ConversionFactor: 1},
	}
	once, changed := SyncMarket(ings, SeedMarketItems())
	require.True(t, changed)

	twice, changed := SyncMarket(once, SeedMarketItems())
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestSyncMarket_KeepsManualFactorWhenUnitsMatch(t *testing.T) {
	// 價格與單位都相同時不重新推算，手動輸入的換算係數保留
	ings := []Ingredient{
		{ID: "a", Name: "Eggs", Quantity: 60, Unit: UnitGram, PurchasePrice: 7, PurchaseUnit: UnitPiece, ConversionFactor: 55},
	}
	got, changed := SyncMarket(ings, SeedMarketItems())
	assert.False(t, changed)
	assert.Equal(t, 55.0, got[0].ConversionFactor)
}

func TestAddFromMarket(t *testing.T) {
	butter := MarketItem{ID: "4", Name: "Butter", Price: 250, Unit: UnitKilogram}

	t.Run("fills first empty row", func(t *testing.T) {
		ings := []Ingredient{
			{ID: "a", Name: "Flour", Quantity: 1, PurchasePrice: 80, ConversionFactor: 1000},
			NewIngredient("b"),
			NewIngredient("c"),
		}
		got := AddFromMarket(ings, butter, "new")
		require.Len(t, got, 3)
		assert.Equal(t, "new", got[1].ID)
		assert.Equal(t, "Butter", got[1].Name)
		assert.Equal(t, UnitGram, got[1].Unit)
		assert.Equal(t, 1000.0, got[1].ConversionFactor)
		assert.Equal(t, "c", got[2].ID)
		assert.Equal(t, "b", ings[1].ID, "input must not be modified")
	})

	t.Run("appends when no empty row", func(t *testing.T) {
		ings := []Ingredient{{ID: "a", Name: "Flour", Quantity: 1, PurchasePrice: 80, ConversionFactor: 1000}}
		got := AddFromMarket(ings, butter, "new")
		require.Len(t, got, 2)
		assert.Equal(t, "new", got[1].ID)
	})

	t.Run("named row with zero price is not empty", func(t *testing.T) {
		ings := []Ingredient{{ID: "a", Name: "Water", Quantity: 1, ConversionFactor: 1}}
		got := AddFromMarket(ings, butter, "new")
		assert.Len(t, got, 2)
	})
}

func TestRemoveIngredient(t *testing.T) {
	ings := []Ingredient{NewIngredient("a"), NewIngredient("b")}

	got, ok := RemoveIngredient(ings, "a")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got, ok = RemoveIngredient(ings, "missing")
	assert.False(t, ok)
	assert.Len(t, got, 2)
}

func TestAppendAndReset(t *testing.T) {
	got := AppendIngredient(nil, "a")
	require.Len(t, got, 1)
	assert.Equal(t, NewIngredient("a"), got[0])

	reset := ResetIngredients("z")
	require.Len(t, reset, 1)
	assert.True(t, reset[0].IsEmpty())
}
