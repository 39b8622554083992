package api

import (
	"context"
	"net/http"
	"time"

	costingHandler "food-costing/internal/api/handlers/costing"
	"food-costing/internal/api/handlers/health"
	"food-costing/internal/api/middleware"
	"food-costing/internal/core/market"
	"food-costing/internal/core/sheet"
	"food-costing/internal/export"
	"food-costing/internal/infrastructure/config"
	"food-costing/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 單一請求的處理上限
const timeoutDuration = 30 * time.Second

// SetupRouter 設置路由；deps 為就緒檢查要 Ping 的依賴
func SetupRouter(cfg *config.Config, sheets *sheet.Service, marketSvc *market.Service, deps map[string]interface{}) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    "REQUEST_TIMEOUT",
				Message: "Request timeout",
			})
		}
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, deps)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	h := costingHandler.NewHandler(sheets, marketSvc, export.Options{
		CurrencySymbol: cfg.Export.CurrencySymbol,
		SheetName:      cfg.Export.SheetName,
	}, cfg.Export.FileName, cfg.App.Debug)

	api := router.Group("/api/v1")
	{
		marketGroup := api.Group("/market")
		{
			marketGroup.GET("", h.ListMarket)
			marketGroup.POST("", h.AddMarketItem)
			marketGroup.PUT("", h.ReplaceMarket)
			marketGroup.POST("/move", h.MoveMarketItem)
			marketGroup.PATCH("/:itemID", h.UpdateMarketItem)
			marketGroup.DELETE("/:itemID", h.RemoveMarketItem)
		}

		sheetGroup := api.Group("/sheets")
		{
			sheetGroup.POST("", h.CreateSheet)
			sheetGroup.GET("/:id", h.GetSheet)
			sheetGroup.DELETE("/:id", h.DeleteSheet)
			sheetGroup.POST("/:id/reset", h.ResetSheet)
			sheetGroup.PUT("/:id/pricing", h.UpdatePricing)
			sheetGroup.GET("/:id/export", h.ExportSheet)

			sheetGroup.POST("/:id/ingredients", h.AddIngredient)
			// 拖放可能重複觸發，只有這個路由去重；新增空白列每次點擊都要生效
			sheetGroup.POST("/:id/ingredients/from-market", middleware.Deduplication(cfg), h.AddIngredientFromMarket)
			sheetGroup.PATCH("/:id/ingredients/:ingredientID", h.EditIngredient)
			sheetGroup.DELETE("/:id/ingredients/:ingredientID", h.RemoveIngredient)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrNotFound.Code,
			Message: common.ErrNotFound.Message,
		})
	})

	common.LogInfo("Router setup completed successfully",
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("sheets_backend", cfg.Sheets.Backend),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
