package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-costing/internal/api"
	"food-costing/internal/core/market"
	"food-costing/internal/core/sheet"
	"food-costing/internal/infrastructure/cache"
	"food-costing/internal/infrastructure/config"
	"food-costing/internal/infrastructure/storage"
	"food-costing/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("storage_dsn", cfg.Storage.DSN),
		zap.String("sheets_backend", cfg.Sheets.Backend),
		zap.String("log_level", cfg.LogLevel),
	)

	// 市場清單儲存
	marketStore, err := storage.Open(cfg.Storage)
	if err != nil {
		common.LogFatal("Failed to open market storage", zap.Error(err))
	}
	defer marketStore.Close()

	marketSvc := market.NewService(marketStore)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	items := marketSvc.Load(loadCtx)
	cancelLoad()
	common.LogInfo("市場清單已載入", zap.Int("items", len(items)))

	// 成本表狀態儲存
	sheetStore, err := cache.Open(cfg)
	if err != nil {
		common.LogFatal("Failed to open sheet store", zap.Error(err))
	}
	defer sheetStore.Close()

	sheetSvc := sheet.NewService(sheetStore, marketSvc)

	router := api.SetupRouter(cfg, sheetSvc, marketSvc, map[string]interface{}{
		"market_storage": marketStore,
		"sheet_store":    sheetStore,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 等待中斷信號或服務器錯誤
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		common.LogInfo("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		common.LogError("Failed to start server", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
