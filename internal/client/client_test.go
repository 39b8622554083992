package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"food-costing/internal/api"
	"food-costing/internal/core/costing"
	"food-costing/internal/core/market"
	"food-costing/internal/core/sheet"
	"food-costing/internal/infrastructure/cache"
	"food-costing/internal/infrastructure/config"
	"food-costing/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Env: "test"},
		Server:  config.ServerConfig{Port: 8080, MaxBodyBytes: 1 << 20},
		Storage: config.StorageConfig{Driver: config.StorageFile, FilePath: filepath.Join(t.TempDir(), "market-list.json")},
		Sheets:  config.SheetsConfig{Backend: config.SheetsMemory, TTL: time.Hour, MaxSize: 10},
		Export:  config.ExportConfig{CurrencySymbol: "₱", SheetName: "Food Costing", FileName: "FoodCosting.xlsx"},
	}

	marketSvc := market.NewService(storage.NewFileStore(cfg.Storage.FilePath))
	marketSvc.Load(context.Background())
	sheets := cache.NewMemoryStore(cfg.Sheets)
	t.Cleanup(func() { _ = sheets.Close() })

	srv := httptest.NewServer(api.SetupRouter(cfg, sheet.NewService(sheets, marketSvc), marketSvc, nil))
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestClient_Market(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	list, err := c.ListMarket(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Items, 5)
	assert.NotEmpty(t, list.Revision)

	item, err := c.AddMarketItem(ctx, "Cocoa", 400, costing.UnitKilogram)
	require.NoError(t, err)

	name := "Dark Cocoa"
	item, err = c.UpdateMarketItem(ctx, item.ID, market.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Dark Cocoa", item.Name)

	moved, err := c.MoveMarketItem(ctx, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, item.ID, moved.Items[0].ID)
	assert.NotEqual(t, list.Revision, moved.Revision)

	require.NoError(t, c.RemoveMarketItem(ctx, item.ID))

	replaced, err := c.ReplaceMarket(ctx, []costing.MarketItem{{Name: "Rice", Price: 55, Unit: costing.UnitKilogram}})
	require.NoError(t, err)
	require.Len(t, replaced.Items, 1)
	assert.NotEmpty(t, replaced.Items[0].ID)

	err = c.RemoveMarketItem(ctx, item.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "MARKET_ITEM_NOT_FOUND", apiErr.Code)
}

func TestClient_SheetAndExport(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	snap, err := c.CreateSheet(ctx)
	require.NoError(t, err)
	id := snap.ID

	snap, err = c.AddFromMarket(ctx, id, costing.MarketItem{ID: "4", Name: "Butter", Price: 250, Unit: costing.UnitKilogram})
	require.NoError(t, err)
	butterID := snap.Rows[0].ID

	snap, err = c.EditIngredient(ctx, id, butterID, "quantity", 200)
	require.NoError(t, err)
	assert.InDelta(t, 50, snap.Summary.GrandTotal, 1e-9)

	snap, err = c.AddIngredient(ctx, id)
	require.NoError(t, err)
	require.Len(t, snap.Rows, 2)

	snap, err = c.RemoveIngredient(ctx, id, snap.Rows[1].ID)
	require.NoError(t, err)
	require.Len(t, snap.Rows, 1)

	method := costing.PricingFactor
	factor := 3.0
	snap, err = c.UpdatePricing(ctx, id, sheet.PricingUpdate{Method: &method, Target: &factor})
	require.NoError(t, err)
	assert.InDelta(t, 150, snap.Summary.SellingPrice, 1e-9)

	data, err := c.Export(ctx, id)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Food Costing", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Butter", name)

	snap, err = c.ResetSheet(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, snap.Summary.GrandTotal)

	require.NoError(t, c.DeleteSheet(ctx, id))
	_, err = c.GetSheet(ctx, id)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "SHEET_NOT_FOUND", apiErr.Code)

	_, err = c.Export(ctx, id)
	assert.True(t, errors.As(err, &apiErr))
}
