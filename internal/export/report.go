package export

import (
	"food-costing/internal/core/costing"
	"food-costing/internal/core/sheet"
)

// ReportRow 匯出的食材列
type ReportRow struct {
	Quantity         float64
	Unit             string
	Name             string
	PurchasePrice    float64
	PurchaseUnit     string
	ConversionFactor float64
	UnitCost         float64
	ExtensionCost    float64
}

// Report 匯出內容：食材列與彙總數字
type Report struct {
	Rows    []ReportRow
	Summary costing.Summary
}

// BuildReport 由成本表檢視建立匯出內容，名稱空白的列不匯出
func BuildReport(snap sheet.Snapshot) Report {
	rows := make([]ReportRow, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		if r.Name == "" {
			continue
		}
		rows = append(rows, ReportRow{
			Quantity:         r.Quantity,
			Unit:             r.Unit,
			Name:             r.Name,
			PurchasePrice:    r.PurchasePrice,
			PurchaseUnit:     r.PurchaseUnit,
			ConversionFactor: r.ConversionFactor,
			UnitCost:         r.UnitCost,
			ExtensionCost:    r.ExtensionCost,
		})
	}
	return Report{Rows: rows, Summary: snap.Summary}
}
