package costing

import (
	"bytes"
	"fmt"
	"net/http"

	costingCore "food-costing/internal/core/costing"
	"food-costing/internal/core/sheet"
	"food-costing/internal/export"
	"food-costing/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EditIngredientRequest 編輯食材單一欄位
//
// 變更 unit 或 purchase_unit 會重新推算換算係數，覆蓋先前手動輸入的 conversion_factor。
type EditIngredientRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

// PricingRequest 更新計價設定，數值欄位可為數字或文字
type PricingRequest struct {
	Method       *costingCore.PricingMethod `json:"method"`
	SellingPrice any                        `json:"selling_price"`
	RecipeYield  any                        `json:"recipe_yield"`
	Target       any                        `json:"target"`
}

// CreateSheet 建立成本表
func (h *Handler) CreateSheet(c *gin.Context) {
	snap, err := h.sheets.Create(c.Request.Context())
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetSheet 取得成本表檢視
func (h *Handler) GetSheet(c *gin.Context) {
	h.respondSnapshot(c)(h.sheets.Get(c.Request.Context(), c.Param("id")))
}

// DeleteSheet 刪除成本表
func (h *Handler) DeleteSheet(c *gin.Context) {
	if err := h.sheets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetSheet 重設成本表
func (h *Handler) ResetSheet(c *gin.Context) {
	h.respondSnapshot(c)(h.sheets.Reset(c.Request.Context(), c.Param("id")))
}

// AddIngredient 附加空白食材
func (h *Handler) AddIngredient(c *gin.Context) {
	h.respondSnapshot(c)(h.sheets.AddIngredient(c.Request.Context(), c.Param("id")))
}

// AddIngredientFromMarket 處理市場品項拖放，請求體為序列化的市場品項
func (h *Handler) AddIngredientFromMarket(c *gin.Context) {
	var item costingCore.MarketItem
	if !bindJSON(c, &item, h.debug) {
		return
	}
	h.respondSnapshot(c)(h.sheets.AddFromMarket(c.Request.Context(), c.Param("id"), item))
}

// EditIngredient 編輯食材欄位
func (h *Handler) EditIngredient(c *gin.Context) {
	var req EditIngredientRequest
	if !bindJSON(c, &req, h.debug) {
		return
	}
	h.respondSnapshot(c)(h.sheets.EditIngredient(c.Request.Context(), c.Param("id"), c.Param("ingredientID"), req.Field, req.Value))
}

// RemoveIngredient 移除食材
func (h *Handler) RemoveIngredient(c *gin.Context) {
	h.respondSnapshot(c)(h.sheets.RemoveIngredient(c.Request.Context(), c.Param("id"), c.Param("ingredientID")))
}

// UpdatePricing 更新計價設定
func (h *Handler) UpdatePricing(c *gin.Context) {
	var req PricingRequest
	if !bindJSON(c, &req, h.debug) {
		return
	}
	upd := sheet.PricingUpdate{
		Method:       req.Method,
		SellingPrice: numberField(req.SellingPrice),
		RecipeYield:  numberField(req.RecipeYield),
		Target:       numberField(req.Target),
	}
	h.respondSnapshot(c)(h.sheets.UpdatePricing(c.Request.Context(), c.Param("id"), upd))
}

// ExportSheet 下載 xlsx 報表
func (h *Handler) ExportSheet(c *gin.Context) {
	snap, err := h.sheets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, export.BuildReport(snap), h.exportOpts); err != nil {
		respondError(c, common.ErrExportFailed.Wrap(err), h.debug)
		return
	}

	common.LogInfo("成本表已匯出",
		zap.String("sheet_id", snap.ID),
		zap.Int("rows", len(snap.Rows)),
		zap.String("request_id", requestid.Get(c)),
	)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.fileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// respondSnapshot 寫入成本表檢視或錯誤
func (h *Handler) respondSnapshot(c *gin.Context) func(sheet.Snapshot, error) {
	return func(snap sheet.Snapshot, err error) {
		if err != nil {
			respondError(c, err, h.debug)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
