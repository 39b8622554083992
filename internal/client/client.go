package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"food-costing/internal/core/costing"
	"food-costing/internal/core/market"
	"food-costing/internal/core/sheet"
	"food-costing/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

// APIError 服務端回傳的錯誤
type APIError struct {
	StatusCode int
	common.ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("food-costing API %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// MarketList 市場清單
type MarketList struct {
	Items    []costing.MarketItem `json:"items"`
	Revision string               `json:"revision"`
	Units    []string             `json:"units"`
}

// Client 成本計算 API 客戶端
type Client struct {
	client *resty.Client
}

// New 創建客戶端，baseURL 例如 http://localhost:8080
func New(baseURL string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetError(&common.ErrorResponse{})

	return &Client{client: client}
}

// ListMarket 取得市場清單
func (c *Client) ListMarket(ctx context.Context) (MarketList, error) {
	var out MarketList
	err := c.do(ctx, http.MethodGet, "/api/v1/market", nil, &out)
	return out, err
}

// AddMarketItem 新增市場品項
func (c *Client) AddMarketItem(ctx context.Context, name string, price float64, unit string) (costing.MarketItem, error) {
	var out costing.MarketItem
	body := map[string]interface{}{"name": name, "price": price, "unit": unit}
	err := c.do(ctx, http.MethodPost, "/api/v1/market", body, &out)
	return out, err
}

// ReplaceMarket 以整份清單取代市場清單
func (c *Client) ReplaceMarket(ctx context.Context, items []costing.MarketItem) (MarketList, error) {
	var out MarketList
	body := map[string]interface{}{"items": items}
	err := c.do(ctx, http.MethodPut, "/api/v1/market", body, &out)
	return out, err
}

// UpdateMarketItem 部分更新市場品項
func (c *Client) UpdateMarketItem(ctx context.Context, id string, patch market.Patch) (costing.MarketItem, error) {
	var out costing.MarketItem
	err := c.do(ctx, http.MethodPatch, "/api/v1/market/"+id, patch, &out)
	return out, err
}

// RemoveMarketItem 移除市場品項
func (c *Client) RemoveMarketItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/market/"+id, nil, nil)
}

// MoveMarketItem 拖放排序
func (c *Client) MoveMarketItem(ctx context.Context, from, to int) (MarketList, error) {
	var out MarketList
	body := map[string]int{"from": from, "to": to}
	err := c.do(ctx, http.MethodPost, "/api/v1/market/move", body, &out)
	return out, err
}

// CreateSheet 建立成本表
func (c *Client) CreateSheet(ctx context.Context) (sheet.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/v1/sheets", nil)
}

// GetSheet 取得成本表
func (c *Client) GetSheet(ctx context.Context, id string) (sheet.Snapshot, error) {
	return c.snapshot(ctx, http.MethodGet, "/api/v1/sheets/"+id, nil)
}

// DeleteSheet 刪除成本表
func (c *Client) DeleteSheet(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sheets/"+id, nil, nil)
}

// ResetSheet 重設成本表
func (c *Client) ResetSheet(ctx context.Context, id string) (sheet.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/v1/sheets/"+id+"/reset", nil)
}

// AddIngredient 附加空白食材
func (c *Client) AddIngredient(ctx context.Context, id string) (sheet.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/v1/sheets/"+id+"/ingredients", nil)
}

// AddFromMarket 以市場品項新增食材
func (c *Client) AddFromMarket(ctx context.Context, id string, item costing.MarketItem) (sheet.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "/api/v1/sheets/"+id+"/ingredients/from-market", item)
}

// EditIngredient 編輯食材欄位
func (c *Client) EditIngredient(ctx context.Context, id, ingredientID, field string, value interface{}) (sheet.Snapshot, error) {
	body := map[string]interface{}{"field": field, "value": value}
	return c.snapshot(ctx, http.MethodPatch, "/api/v1/sheets/"+id+"/ingredients/"+ingredientID, body)
}

// RemoveIngredient 移除食材
func (c *Client) RemoveIngredient(ctx context.Context, id, ingredientID string) (sheet.Snapshot, error) {
	return c.snapshot(ctx, http.MethodDelete, "/api/v1/sheets/"+id+"/ingredients/"+ingredientID, nil)
}

// UpdatePricing 更新計價設定
func (c *Client) UpdatePricing(ctx context.Context, id string, upd sheet.PricingUpdate) (sheet.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPut, "/api/v1/sheets/"+id+"/pricing", upd)
}

// Export 下載 xlsx 報表內容
func (c *Client) Export(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/api/v1/sheets/" + id + "/export")
	if err != nil {
		return nil, fmt.Errorf("failed to send export request: %w", err)
	}
	if resp.IsError() {
		return nil, toAPIError(resp)
	}
	return resp.Body(), nil
}

func (c *Client) snapshot(ctx context.Context, method, path string, body interface{}) (sheet.Snapshot, error) {
	var out sheet.Snapshot
	err := c.do(ctx, method, path, body, &out)
	return out, err
}

// do 發送請求並解析 JSON 回應，非 2xx 回傳 *APIError
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to send request %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return toAPIError(resp)
	}
	return nil
}

func toAPIError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if e, ok := resp.Error().(*common.ErrorResponse); ok && e != nil {
		apiErr.ErrorResponse = *e
	}
	if apiErr.Code == "" {
		apiErr.Message = resp.Status()
	}
	return apiErr
}
