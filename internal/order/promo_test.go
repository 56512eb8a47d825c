package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/example/marketplace/internal/domain"
)

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name  string
		dtype domain.DiscountType
		value string
		total string
		want  string
	}{
		{"percentage simple", domain.DiscountPercentage, "10", "100.00", "10.00"},
		{"percentage rounds half up", domain.DiscountPercentage, "15", "10.10", "1.52"},
		{"percentage at cap", domain.DiscountPercentage, "70", "100.00", "70.00"},
		{"percentage above cap", domain.DiscountPercentage, "90", "100.00", "70.00"},
		{"percentage hundred capped", domain.DiscountPercentage, "100", "50.00", "35.00"},
		{"fixed below total", domain.DiscountFixedAmount, "5", "20.00", "5.00"},
		{"fixed equals total", domain.DiscountFixedAmount, "20", "20.00", "20.00"},
		{"fixed above total clamps", domain.DiscountFixedAmount, "50", "20.00", "20.00"},
		{"fixed on zero total", domain.DiscountFixedAmount, "5", "0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.PromoCode{
				DiscountType:  tt.dtype,
				DiscountValue: decimal.RequireFromString(tt.value),
			}
			got := computeDiscount(p, decimal.RequireFromString(tt.total))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"computeDiscount = %s, want %s", got, tt.want)
		})
	}
}

func TestWindowMinutes(t *testing.T) {
	assert.Equal(t, 1, windowMinutes(0))
	assert.Equal(t, 1, windowMinutes(30*time.Second))
	assert.Equal(t, 1, windowMinutes(time.Minute))
	assert.Equal(t, 5, windowMinutes(5*time.Minute))
}
