package promo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store/memory"
)

func testInput() CreateInput {
	return CreateInput{
		Code:           "SUMMER10",
		DiscountType:   domain.DiscountPercentage,
		DiscountValue:  decimal.RequireFromString("10"),
		MinOrderAmount: decimal.Zero,
		MaxUses:        100,
		ValidFrom:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_Create_Success(t *testing.T) {
	svc := NewService(memory.NewStore())
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}

	p, err := svc.Create(context.Background(), admin, testInput())

	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "SUMMER10", p.Code)
	assert.Equal(t, 0, p.CurrentUses)
	assert.True(t, p.Active)
}

func TestService_Create_DuplicateCode(t *testing.T) {
	svc := NewService(memory.NewStore())
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}

	_, err := svc.Create(context.Background(), admin, testInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), admin, testInput())

	var appErr *domain.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodePromoCodeConflict, appErr.Code)
}

func TestService_Create_UserDenied(t *testing.T) {
	svc := NewService(memory.NewStore())
	user := domain.Actor{ID: 1, Role: domain.RoleUser}

	_, err := svc.Create(context.Background(), user, testInput())

	var appErr *domain.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeAccessDenied, appErr.Code)
}

func TestService_Create_SellerAllowed(t *testing.T) {
	svc := NewService(memory.NewStore())
	seller := domain.Actor{ID: 1, Role: domain.RoleSeller}

	p, err := svc.Create(context.Background(), seller, testInput())

	require.NoError(t, err)
	assert.NotZero(t, p.ID)
}
