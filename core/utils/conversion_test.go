package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"Float64", 99.99, 99.99, true},
		{"Int", 42, 42, true},
		{"Uint8", uint8(7), 7, true},
		{"JSONNumber", json.Number("12.5"), 12.5, true},
		{"NumericString", " 100.25 ", 100.25, true},
		{"Bytes", []byte("3"), 3, true},
		{"EmptyString", "", 0, false},
		{"Garbage", "twelve", 0, false},
		{"NaNString", "NaN", 0, false},
		{"InfFloat", math.Inf(1), 0, false},
		{"NaNFloat", math.NaN(), 0, false},
		{"Bool", true, 0, false},
		{"Nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "99.5", ToString(99.5))
	assert.Equal(t, "100", ToString(float64(100)))
	assert.Equal(t, "12", ToString(12))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "7.25", ToString(json.Number("7.25")))
}
