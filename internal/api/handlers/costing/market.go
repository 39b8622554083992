package costing

import (
	"net/http"

	costingCore "food-costing/internal/core/costing"
	"food-costing/internal/core/market"
	"food-costing/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// MarketListResponse 市場清單響應
type MarketListResponse struct {
	Items    []costingCore.MarketItem `json:"items"`
	Revision string                   `json:"revision"`
	Units    []string                 `json:"units"`
}

// AddMarketItemRequest 新增市場品項，price 可為數字或文字
type AddMarketItemRequest struct {
	Name  string `json:"name"`
	Price any    `json:"price"`
	Unit  string `json:"unit"`
}

// UpdateMarketItemRequest 部分更新市場品項，未提供的欄位保持原值
type UpdateMarketItemRequest struct {
	Name  *string `json:"name"`
	Price any     `json:"price"`
	Unit  *string `json:"unit"`
}

// ReplaceMarketRequest 以整份清單取代市場清單
type ReplaceMarketRequest struct {
	Items []costingCore.MarketItem `json:"items" binding:"required"`
}

// MoveMarketItemRequest 拖放排序
type MoveMarketItemRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// ListMarket 取得市場清單
func (h *Handler) ListMarket(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketResponse())
}

// AddMarketItem 新增市場品項
func (h *Handler) AddMarketItem(c *gin.Context) {
	var req AddMarketItemRequest
	if !bindJSON(c, &req, h.debug) {
		return
	}
	item := h.market.Add(c.Request.Context(), req.Name, common.ParseNumber(req.Price), req.Unit)
	c.JSON(http.StatusCreated, item)
}

// UpdateMarketItem 部分更新市場品項
func (h *Handler) UpdateMarketItem(c *gin.Context) {
	var req UpdateMarketItemRequest
	if !bindJSON(c, &req, h.debug) {
		return
	}
	patch := market.Patch{Name: req.Name, Price: numberField(req.Price), Unit: req.Unit}
	item, err := h.market.Update(c.Request.Context(), c.Param("itemID"), patch)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveMarketItem 移除市場品項
func (h *Handler) RemoveMarketItem(c *gin.Context) {
	if err := h.market.Remove(c.Request.Context(), c.Param("itemID")); err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveMarketItem 拖放排序市場品項
func (h *Handler) MoveMarketItem(c *gin.Context) {
	var req MoveMarketItemRequest
	if !bindJSON(c, &req, h.debug) {
		return
	}
	h.market.Move(c.Request.Context(), *req.From, *req.To)
	c.JSON(http.StatusOK, h.marketResponse())
}

// ReplaceMarket 匯入整份市場清單
func (h *Handler) ReplaceMarket(c *gin.Context) {
	var req ReplaceMarketRequest
	if !bindJSON(c, &req, h.debug) {
		return
	}
	h.market.Replace(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, h.marketResponse())
}

func (h *Handler) marketResponse() MarketListResponse {
	items, revision := h.market.Snapshot()
	return MarketListResponse{Items: items, Revision: revision, Units: costingCore.Units}
}
