package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-costing/internal/infrastructure/config"
	"food-costing/internal/pkg/common"
)

var (
	// 請求緩存，用於去重
	requestCache = struct {
		sync.Mutex
		requests map[string]time.Time
	}{
		requests: make(map[string]time.Time),
	}

	// 啟動自動清理 goroutine（只啟動一次）
	cleanupOnce sync.Once
)

// 啟動自動清理 goroutine
func startDeduplicationCleanup(window time.Duration) {
	cleanupOnce.Do(func() {
		interval := 10 * time.Minute
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				now := time.Now()
				requestCache.Lock()
				for k, t := range requestCache.requests {
					if now.Sub(t) > 10*window {
						delete(requestCache.requests, k)
					}
				}
				requestCache.Unlock()
			}
		}()
	})
}

// Deduplication 拒絕在 dedupWindow 內重複送出的相同 POST
//
// 只掛在拖放新增食材的路由上，用來吸收同一次拖放觸發兩次的請求。dedupWindow 不大於 0 時停用。
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	dedupWindow := cfg.DedupWindow
	if dedupWindow <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	startDeduplicationCleanup(dedupWindow)

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			// 讀取請求體
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			// 計算哈希
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋，同一客戶端才視為重複
		fingerprint := c.ClientIP() + ":" + c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		// 檢查是否是重複請求
		now := time.Now()
		requestCache.Lock()
		if lastTime, exists := requestCache.requests[fingerprint]; exists {
			if now.Sub(lastTime) <= dedupWindow {
				requestCache.Unlock()
				common.LogWarn("Duplicate request rejected",
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
				)
				c.JSON(http.StatusTooManyRequests, common.ErrorResponse{
					Code:    common.ErrTooManyRequests.Code,
					Message: common.ErrTooManyRequests.Message,
				})
				c.Abort()
				return
			}
		}
		// 記錄請求
		requestCache.requests[fingerprint] = now
		requestCache.Unlock()

		c.Next()
	}
}
