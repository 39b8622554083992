package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"food-costing/internal/core/costing"
	"food-costing/internal/core/market"
	"food-costing/internal/core/sheet"
	"food-costing/internal/infrastructure/cache"
	"food-costing/internal/infrastructure/config"
	"food-costing/internal/infrastructure/storage"
	"food-costing/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test", Version: "test"},
		Server:  config.ServerConfig{Port: 8080, MaxBodyBytes: 1 << 20},
		Storage: config.StorageConfig{Driver: config.StorageFile},
		Sheets:  config.SheetsConfig{Backend: config.SheetsMemory, TTL: time.Hour, MaxSize: 100},
		Export:  config.ExportConfig{CurrencySymbol: "₱", SheetName: "Food Costing", FileName: "FoodCosting.xlsx"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	cfg.Storage.FilePath = filepath.Join(t.TempDir(), "market-list.json")
	store := storage.NewFileStore(cfg.Storage.FilePath)

	marketSvc := market.NewService(store)
	marketSvc.Load(context.Background())

	sheets := cache.NewMemoryStore(cfg.Sheets)
	t.Cleanup(func() { _ = sheets.Close() })

	return SetupRouter(cfg, sheet.NewService(sheets, marketSvc), marketSvc, map[string]interface{}{"market_storage": store, "sheet_store": sheets})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthRoutes(t *testing.T) {
	r := newTestRouter(t, testConfig())

	for _, path := range []string{"/health", "/ready", "/live"} {
		w := doJSON(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}
}

func TestSheetFlow(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doJSON(t, r, http.MethodPost, "/api/v1/sheets", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decode[sheet.Snapshot](t, w)
	require.Len(t, snap.Rows, 1)
	base := "/api/v1/sheets/" + snap.ID

	w = doJSON(t, r, http.MethodPost, base+"/ingredients/from-market", costing.MarketItem{ID: "3", Name: "Eggs", Price: 7, Unit: costing.UnitPiece})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[sheet.Snapshot](t, w)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, costing.UnitPiece, snap.Rows[0].Unit)

	w = doJSON(t, r, http.MethodPatch, base+"/ingredients/"+snap.Rows[0].ID, map[string]interface{}{"field": "quantity", "value": "6"})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[sheet.Snapshot](t, w)
	assert.InDelta(t, 42, snap.Summary.GrandTotal, 1e-9)

	w = doJSON(t, r, http.MethodPut, base+"/pricing", map[string]interface{}{"target": 35, "recipe_yield": 6})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[sheet.Snapshot](t, w)
	assert.InDelta(t, 120, snap.Summary.SellingPrice, 1e-9)
	assert.InDelta(t, 7, snap.Summary.CostPerServing, 1e-9)

	req := httptest.NewRequest(http.MethodGet, base+"/export", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "FoodCosting.xlsx")
	assert.Equal(t, "PK", rec.Body.String()[:2], "xlsx is a zip archive")

	w = doJSON(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SHEET_NOT_FOUND", decode[common.ErrorResponse](t, w).Code)
}

func TestSheetErrors(t *testing.T) {
	r := newTestRouter(t, testConfig())

	snap := decode[sheet.Snapshot](t, doJSON(t, r, http.MethodPost, "/api/v1/sheets", nil))
	base := "/api/v1/sheets/" + snap.ID

	w := doJSON(t, r, http.MethodPatch, base+"/ingredients/"+snap.Rows[0].ID, map[string]interface{}{"field": "color", "value": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_FIELD", decode[common.ErrorResponse](t, w).Code)

	w = doJSON(t, r, http.MethodPatch, base+"/ingredients/missing", map[string]interface{}{"field": "quantity", "value": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, base+"/pricing", map[string]interface{}{"method": "markup"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PRICING_METHOD", decode[common.ErrorResponse](t, w).Code)

	w = doJSON(t, r, http.MethodPatch, base+"/ingredients/x", map[string]interface{}{"value": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decode[common.ErrorResponse](t, w).Code)
}

func TestMarketRoutes(t *testing.T) {
	r := newTestRouter(t, testConfig())

	list := decode[map[string]interface{}](t, doJSON(t, r, http.MethodGet, "/api/v1/market", nil))
	assert.Len(t, list["items"], 5)
	assert.Len(t, list["units"], len(costing.Units))

	w := doJSON(t, r, http.MethodPost, "/api/v1/market", map[string]interface{}{"name": "Salt", "price": 20})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[costing.MarketItem](t, w)
	assert.Equal(t, costing.UnitKilogram, item.Unit)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/market/"+item.ID, map[string]interface{}{"price": 25})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25.0, decode[costing.MarketItem](t, w).Price)

	w = doJSON(t, r, http.MethodPost, "/api/v1/market/move", map[string]int{"from": 5, "to": 0})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[struct {
		Items []costing.MarketItem `json:"items"`
	}](t, w)
	assert.Equal(t, item.ID, moved.Items[0].ID)

	w = doJSON(t, r, http.MethodPost, "/api/v1/market/move", map[string]int{"from": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/market/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/api/v1/market/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarketEditPropagatesToSheet(t *testing.T) {
	r := newTestRouter(t, testConfig())

	snap := decode[sheet.Snapshot](t, doJSON(t, r, http.MethodPost, "/api/v1/sheets", nil))
	base := "/api/v1/sheets/" + snap.ID
	doJSON(t, r, http.MethodPatch, base+"/ingredients/"+snap.Rows[0].ID, map[string]interface{}{"field": "name", "value": "Flour"})

	w := doJSON(t, r, http.MethodPatch, "/api/v1/market/1", map[string]interface{}{"price": 100})
	require.Equal(t, http.StatusOK, w.Code)

	snap = decode[sheet.Snapshot](t, doJSON(t, r, http.MethodGet, base, nil))
	assert.Equal(t, 100.0, snap.Rows[0].PurchasePrice)
}

func TestDeduplication_DropFromMarket(t *testing.T) {
	cfg := testConfig()
	cfg.DedupWindow = time.Minute
	r := newTestRouter(t, cfg)

	snap := decode[sheet.Snapshot](t, doJSON(t, r, http.MethodPost, "/api/v1/sheets", nil))
	path := "/api/v1/sheets/" + snap.ID + "/ingredients/from-market"
	item := costing.MarketItem{ID: "1", Name: "Flour", Price: 80, Unit: costing.UnitKilogram}

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, path, item).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, r, http.MethodPost, path, item).Code)

	snap = decode[sheet.Snapshot](t, doJSON(t, r, http.MethodGet, "/api/v1/sheets/"+snap.ID, nil))
	assert.Len(t, snap.Rows, 1)
}

func TestDeduplication_RepeatedClicksStillApply(t *testing.T) {
	cfg := testConfig()
	cfg.DedupWindow = time.Minute
	r := newTestRouter(t, cfg)

	snap := decode[sheet.Snapshot](t, doJSON(t, r, http.MethodPost, "/api/v1/sheets", nil))
	path := "/api/v1/sheets/" + snap.ID + "/ingredients"

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, path, nil).Code)
	w := doJSON(t, r, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[sheet.Snapshot](t, w).Rows, 3)

	body := map[string]interface{}{"name": "Salt", "price": 20}
	assert.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/market", body).Code)
	assert.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/market", body).Code)
}

func TestNumericTextCoercion(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doJSON(t, r, http.MethodPatch, "/api/v1/market/1", map[string]interface{}{"price": "abc"})
	require.Equal(t, http.StatusOK, w.Code)
	item := decode[costing.MarketItem](t, w)
	assert.Zero(t, item.Price)
	assert.Equal(t, "Flour", item.Name)

	w = doJSON(t, r, http.MethodPost, "/api/v1/market", map[string]interface{}{"name": "Salt", "price": "1,250"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1250.0, decode[costing.MarketItem](t, w).Price)

	snap := decode[sheet.Snapshot](t, doJSON(t, r, http.MethodPost, "/api/v1/sheets", nil))
	base := "/api/v1/sheets/" + snap.ID

	w = doJSON(t, r, http.MethodPut, base+"/pricing", map[string]interface{}{"selling_price": "150", "recipe_yield": "4"})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[sheet.Snapshot](t, w)
	assert.Equal(t, 150.0, snap.Summary.SellingPrice)
	assert.Equal(t, 4.0, snap.Summary.RecipeYield)

	w = doJSON(t, r, http.MethodPut, base+"/pricing", map[string]interface{}{"selling_price": "12,5x", "recipe_yield": "none"})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[sheet.Snapshot](t, w)
	assert.Zero(t, snap.Summary.SellingPrice)
	assert.Equal(t, 1.0, snap.Summary.RecipeYield)

	w = doJSON(t, r, http.MethodPut, base+"/pricing", map[string]interface{}{"selling_price": 80, "target": "n/a"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 80.0, decode[sheet.Snapshot](t, w).Summary.SellingPrice, "unparseable target leaves the price")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour}
	r := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/live", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/live", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, r, http.MethodGet, "/live", nil).Code)
}
