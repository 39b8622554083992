package common

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"float", 12.5, 12.5},
		{"int", 3, 3},
		{"json number", json.Number("4.25"), 4.25},
		{"string", "80", 80},
		{"padded string", "  7.5 ", 7.5},
		{"thousands separator", "1,250.50", 1250.5},
		{"negative", "-2", -2},
		{"empty", "", 0},
		{"garbage", "abc", 0},
		{"nil", nil, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.input))
		})
	}
}

func TestToText(t *testing.T) {
	assert.Equal(t, "Flour", ToText("Flour"))
	assert.Equal(t, "", ToText(nil))
	assert.Equal(t, "12.5", ToText(12.5))
}
