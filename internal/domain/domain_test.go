package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderCreated:        {OrderPaymentPending, OrderCanceled},
		OrderPaymentPending: {OrderPaid, OrderCanceled},
		OrderPaid:           {OrderShipped},
		OrderShipped:        {OrderCompleted},
		OrderCompleted:      {},
		OrderCanceled:       {},
	}
	all := []OrderStatus{OrderCreated, OrderPaymentPending, OrderPaid, OrderShipped, OrderCompleted, OrderCanceled}

	for from, targets := range allowed {
		want := make(map[OrderStatus]bool, len(targets))
		for _, to := range targets {
			want[to] = true
		}
		for _, to := range all {
			assert.Equal(t, want[to], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(OrderStatus("BOGUS"), OrderCanceled))
}

func TestOrderIsActive(t *testing.T) {
	tests := []struct {
		status OrderStatus
		active bool
	}{
		{OrderCreated, true},
		{OrderPaymentPending, true},
		{OrderPaid, false},
		{OrderShipped, false},
		{OrderCompleted, false},
		{OrderCanceled, false},
	}

	for _, tt := range tests {
		o := &Order{Status: tt.status}
		assert.Equal(t, tt.active, o.IsActive(), "status %s", tt.status)
	}
}

func TestPromoCodeInWindow(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	p := &PromoCode{ValidFrom: from, ValidUntil: until}

	assert.False(t, p.InWindow(from.Add(-time.Second)))
	assert.True(t, p.InWindow(from), "valid_from is inclusive")
	assert.True(t, p.InWindow(from.Add(24*time.Hour)))
	assert.False(t, p.InWindow(until), "valid_until is exclusive")
	assert.False(t, p.InWindow(until.Add(time.Second)))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("USER"))
	assert.True(t, ValidRole("SELLER"))
	assert.True(t, ValidRole("ADMIN"))
	assert.False(t, ValidRole("user"))
	assert.False(t, ValidRole(""))
}

func TestValidDiscountType(t *testing.T) {
	assert.True(t, ValidDiscountType("PERCENTAGE"))
	assert.True(t, ValidDiscountType("FIXED_AMOUNT"))
	assert.False(t, ValidDiscountType("BOGO"))
}
