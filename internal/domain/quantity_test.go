package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositiveQty(t *testing.T) {
	tests := []struct {
		qty  float64
		want bool
	}{
		{qty: 1, want: true},
		{qty: 0.0001, want: true},
		{qty: 0.00005, want: true},
		{qty: 0.00004, want: false},
		{qty: 0, want: false},
		{qty: -2, want: false},
		{qty: math.NaN(), want: false},
		{qty: math.Inf(1), want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PositiveQty(tt.qty), "qty=%v", tt.qty)
	}
}
