package common

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ParseNumber 將使用者輸入轉為數值
//
// 接受 JSON 數字或字串，字串會去除前後空白與千分位逗號。
// 無法解析、NaN 或無限大一律視為 0。
func ParseNumber(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// ToText 將使用者輸入轉為字串，nil 視為空字串
func ToText(v any) string {
	return cast.ToString(v)
}
