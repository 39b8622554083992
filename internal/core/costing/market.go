package costing

// MarketItem 市場清單中可重複使用的品項
type MarketItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Unit  string  `json:"unit"`
}

// 新增市場品項時的預設值
const (
	DefaultMarketItemName = "New Item"
	DefaultMarketItemUnit = UnitKilogram
)

// SeedMarketItems 尚無儲存資料時使用的預設市場清單
func SeedMarketItems() []MarketItem {
	return []MarketItem{
		{ID: "1", Name: "Flour", Price: 80, Unit: UnitKilogram},
		{ID: "2", Name: "Sugar", Price: 90, Unit: UnitKilogram},
		{ID: "3", Name: "Eggs", Price: 7, Unit: UnitPiece},
		{ID: "4", Name: "Butter", Price: 250, Unit: UnitKilogram},
		{ID: "5", Name: "Milk", Price: 70, Unit: UnitLiter},
	}
}

// MarketIndex 以名稱鍵索引市場品項，供市場變更時的批次同步使用
//
// 名稱重複時保留最後一筆，與逐筆寫入 map 的行為一致。
type MarketIndex map[string]MarketItem

// NewMarketIndex 建立索引
func NewMarketIndex(items []MarketItem) MarketIndex {
	idx := make(MarketIndex, len(items))
	for _, item := range items {
		idx[joinKey(item.Name)] = item
	}
	return idx
}

// Lookup 依食材名稱尋找市場品項，空白名稱永遠不會命中
func (idx MarketIndex) Lookup(name string) (MarketItem, bool) {
	key := joinKey(name)
	if key == "" {
		return MarketItem{}, false
	}
	item, ok := idx[key]
	return item, ok
}

// FindMarketItem 依序尋找第一個名稱鍵相同的市場品項，供編輯食材名稱時使用
//
// 名稱重複時取第一筆，與 MarketIndex 的最後一筆不同。空白名稱永遠不會命中。
func FindMarketItem(items []MarketItem, name string) (MarketItem, bool) {
	key := joinKey(name)
	if key == "" {
		return MarketItem{}, false
	}
	for _, item := range items {
		if joinKey(item.Name) == key {
			return item, true
		}
	}
	return MarketItem{}, false
}

// MoveMarketItem 將 from 位置的品項移到 to 位置
func MoveMarketItem(items []MarketItem, from, to int) ([]MarketItem, bool) {
	if from == to || from < 0 || to < 0 || from >= len(items) || to >= len(items) {
		return items, false
	}
	out := make([]MarketItem, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	moved := items[from]
	out = append(out[:to], append([]MarketItem{moved}, out[to:]...)...)
	return out, true
}
