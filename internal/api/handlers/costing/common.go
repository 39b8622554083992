package costing

import (
	"net/http"

	"food-costing/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 依錯誤類型寫入錯誤響應，details 僅在除錯模式輸出
func respondError(c *gin.Context, err error, debug bool) {
	ce := common.AsCustomError(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}

	resp := common.ErrorResponse{Code: ce.Code, Message: ce.Message}
	if debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	c.AbortWithStatusJSON(ce.Status, resp)
}

// bindJSON 解析請求體，失敗時寫入 400
func bindJSON(c *gin.Context, v interface{}, debug bool) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, common.ErrInvalidRequest.Wrap(err), debug)
		return false
	}
	return true
}

// numberField 將輸入轉為數字，未提供時回傳 nil；無法解析的文字視為 0
func numberField(v any) *float64 {
	if v == nil {
		return nil
	}
	n := common.ParseNumber(v)
	return &n
}
