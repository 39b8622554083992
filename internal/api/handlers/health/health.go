package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"food-costing/internal/infrastructure/config"
	"food-costing/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readinessTimeout 單一依賴檢查的上限
const readinessTimeout = 2 * time.Second

// Pinger 可檢查連線狀態的依賴，例如資料庫或 Redis
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider 可回報運行統計的依賴，例如記憶體成本表儲存
type StatsProvider interface {
	Stats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                            `json:"status"`
	Timestamp time.Time                         `json:"timestamp"`
	Version   string                            `json:"version"`
	Runtime   map[string]interface{}            `json:"runtime"`
	Storage   StorageStatus                     `json:"storage"`
	Stats     map[string]map[string]interface{} `json:"stats,omitempty"`
}

// StorageStatus 儲存設定摘要
type StorageStatus struct {
	MarketDriver  string `json:"market_driver"`
	SheetsBackend string `json:"sheets_backend"`
}

// Handler 健康檢查處理程序
type Handler struct {
	cfg    *config.Config
	checks map[string]Pinger
	stats  map[string]StatsProvider
}

// NewHandler 創建健康檢查處理程序
//
// deps 中支援 Ping 的依賴納入就緒檢查，支援 Stats 的依賴在健康檢查中回報統計，其餘略過。
func NewHandler(cfg *config.Config, deps map[string]interface{}) *Handler {
	checks := make(map[string]Pinger)
	stats := make(map[string]StatsProvider)
	for name, dep := range deps {
		if p, ok := dep.(Pinger); ok {
			checks[name] = p
		}
		if sp, ok := dep.(StatsProvider); ok {
			stats[name] = sp
		}
	}
	return &Handler{cfg: cfg, checks: checks, stats: stats}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Storage: StorageStatus{
			MarketDriver:  h.cfg.Storage.Driver,
			SheetsBackend: h.cfg.Sheets.Backend,
		},
	}

	if len(h.stats) > 0 {
		response.Stats = make(map[string]map[string]interface{}, len(h.stats))
		for name, sp := range h.stats {
			response.Stats[name] = sp.Stats()
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，逐一 Ping 外部依賴
func (h *Handler) ReadinessCheck(c *gin.Context) {
	failures := make(map[string]string)
	for name, p := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := p.Ping(ctx)
		cancel()
		if err != nil {
			common.LogWarn("依賴檢查失敗", zap.String("dependency", name), zap.Error(err))
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"failures": failures,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
