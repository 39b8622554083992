package export

import (
	"fmt"
	"io"

	"food-costing/internal/core/costing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Options 試算表輸出設定
type Options struct {
	CurrencySymbol string
	SheetName      string
}

// 數值欄位寫入完整數值，顯示位數只由數字格式決定

// 資料列從第 2 列開始，彙總區塊的標籤在 F 欄、數值在 G 欄
const (
	firstDataRow = 2
	labelColumn  = "F"
	valueColumn  = "G"
)

var headers = []string{"QTY", "UNIT", "INGREDIENT", "PURCHASE PRICE", "UNIT CONVERSION", "UNIT COST", "EXTENSION COST"}

var columnWidths = map[string]float64{"A": 10, "B": 8, "C": 30, "D": 20, "E": 15, "F": 22, "G": 18}

type styles struct {
	number, integer, money, money4dp, percent int
}

// WriteXLSX 將報表寫成 xlsx
func WriteXLSX(w io.Writer, report Report, opts Options) error {
	if opts.SheetName == "" {
		opts.SheetName = "Food Costing"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), opts.SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sheetName := opts.SheetName

	st, err := newStyles(f, opts.CurrencySymbol)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	header[5] = fmt.Sprintf("UNIT COST (%s)", opts.CurrencySymbol)
	header[6] = fmt.Sprintf("EXTENSION COST (%s)", opts.CurrencySymbol)
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range report.Rows {
		row := firstDataRow + i
		values := []interface{}{
			r.Quantity,
			r.Unit,
			r.Name,
			fmt.Sprintf("%s%s / %s", opts.CurrencySymbol, decimal.NewFromFloat(r.PurchasePrice).StringFixed(2), r.PurchaseUnit),
			r.ConversionFactor,
			r.UnitCost,
			r.ExtensionCost,
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		for _, c := range []struct {
			col   string
			style int
		}{{"A", st.number}, {"E", st.integer}, {"F", st.money4dp}, {"G", st.money}} {
			cell := fmt.Sprintf("%s%d", c.col, row)
			if err := f.SetCellStyle(sheetName, cell, cell, c.style); err != nil {
				return fmt.Errorf("style %s: %w", cell, err)
			}
		}
	}

	if err := writeSummary(f, sheetName, firstDataRow+len(report.Rows)+1, report.Summary, st); err != nil {
		return err
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeSummary 寫入彙總區塊，start 為第一個彙總列（資料列後空一列）
func writeSummary(f *excelize.File, sheetName string, start int, s costing.Summary, st styles) error {
	type line struct {
		label string
		value interface{}
		style int
	}
	lines := []line{
		{"Grand Total:", s.GrandTotal, st.money},
		{"Yield (Servings):", s.RecipeYield, st.integer},
		{"Cost per Serving:", s.CostPerServing, st.money},
		{"Pricing Method:", s.PricingMethod.Label(), 0},
	}
	if s.PricingMethod == costing.PricingFactor {
		lines = append(lines, line{"Pricing Factor:", s.PricingFactor, st.number})
	} else {
		lines = append(lines, line{"Target Food Cost %:", s.ResultingFoodCostPercentage/100, st.percent})
	}
	lines = append(lines,
		line{"Recipe Selling Price:", s.SellingPrice, st.money},
		line{"Final Food Cost %:", s.ResultingFoodCostPercentage/100, st.percent},
	)

	for i, l := range lines {
		row := start + i
		labelCell := fmt.Sprintf("%s%d", labelColumn, row)
		valueCell := fmt.Sprintf("%s%d", valueColumn, row)
		if err := f.SetCellValue(sheetName, labelCell, l.label); err != nil {
			return fmt.Errorf("write %s: %w", labelCell, err)
		}
		if err := f.SetCellValue(sheetName, valueCell, l.value); err != nil {
			return fmt.Errorf("write %s: %w", valueCell, err)
		}
		if l.style == 0 {
			continue
		}
		if err := f.SetCellStyle(sheetName, valueCell, valueCell, l.style); err != nil {
			return fmt.Errorf("style %s: %w", valueCell, err)
		}
	}
	return nil
}

func newStyles(f *excelize.File, currency string) (styles, error) {
	formats := []string{
		"#,##0.00",
		"#,##0",
		fmt.Sprintf(`"%s"#,##0.00`, currency),
		fmt.Sprintf(`"%s"#,##0.0000`, currency),
		"0.00%",
	}
	ids := make([]int, len(formats))
	for i := range formats {
		id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &formats[i]})
		if err != nil {
			return styles{}, fmt.Errorf("create number format %q: %w", formats[i], err)
		}
		ids[i] = id
	}
	return styles{number: ids[0], integer: ids[1], money: ids[2], money4dp: ids[3], percent: ids[4]}, nil
}
