package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓包裝過的預定義錯誤仍可用 errors.Is 判斷
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Wrap 以預定義錯誤包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError 取出錯誤鏈中的自定義錯誤，找不到時歸類為內部錯誤
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429
	ErrCodeInternalError   = "INTERNAL_ERROR"    // 500
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)

	// 業務錯誤
	ErrSheetNotFound        = NewError("SHEET_NOT_FOUND", "成本表不存在", http.StatusNotFound, nil)
	ErrIngredientNotFound   = NewError("INGREDIENT_NOT_FOUND", "食材不存在", http.StatusNotFound, nil)
	ErrMarketItemNotFound   = NewError("MARKET_ITEM_NOT_FOUND", "市場品項不存在", http.StatusNotFound, nil)
	ErrUnknownField         = NewError("UNKNOWN_FIELD", "不支援的欄位", http.StatusBadRequest, nil)
	ErrInvalidPricingMethod = NewError("INVALID_PRICING_METHOD", "不支援的計價方式", http.StatusBadRequest, nil)
	ErrExportFailed         = NewError("EXPORT_FAILED", "匯出失敗", http.StatusInternalServerError, nil)
	ErrStorageUnavailable   = NewError("STORAGE_UNAVAILABLE", "儲存服務暫時不可用", http.StatusServiceUnavailable, nil)
)
