package costing

import (
	"food-costing/internal/core/market"
	"food-costing/internal/core/sheet"
	"food-costing/internal/export"
)

// Handler 成本表與市場清單的 HTTP 處理程序
type Handler struct {
	sheets     *sheet.Service
	market     *market.Service
	exportOpts export.Options
	fileName   string
	debug      bool
}

// NewHandler 創建處理程序
func NewHandler(sheets *sheet.Service, market *market.Service, exportOpts export.Options, fileName string, debug bool) *Handler {
	if fileName == "" {
		fileName = "FoodCosting.xlsx"
	}
	return &Handler{
		sheets:     sheets,
		market:     market,
		exportOpts: exportOpts,
		fileName:   fileName,
		debug:      debug,
	}
}
