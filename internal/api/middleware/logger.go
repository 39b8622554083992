package middleware

import (
	"net/http"
	"time"

	"food-costing/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// routeParams 請求日誌中要帶出的路由參數與對應欄位名稱
var routeParams = []struct{ param, field string }{
	{"id", "sheet_id"},
	{"ingredientID", "ingredient_id"},
	{"itemID", "market_item_id"},
}

// Logger 日誌中間件，依狀態碼決定級別，並附上成本表與市場品項的識別碼
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.Writer.Header().Get("X-Request-ID")),
		}
		fields = append(fields, paramFields(c)...)

		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= 500:
			common.LogError("伺服器錯誤", append(fields, zap.String("error_type", "server_error"))...)
		case status >= 400:
			common.LogWarn("用戶端錯誤", append(fields, zap.String("error_type", "client_error"))...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// paramFields 取出路由上有值的識別碼
func paramFields(c *gin.Context) []zap.Field {
	var fields []zap.Field
	for _, p := range routeParams {
		if v := c.Param(p.param); v != "" {
			fields = append(fields, zap.String(p.field, v))
		}
	}
	return fields
}

// Recovery 恢復中間件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 記錄基本錯誤信息
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				// 返回簡單的 500 錯誤
				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{
					Code:    common.ErrCodeInternalError,
					Message: "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
