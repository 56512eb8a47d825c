package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store"
)

// percentageCap limits a PERCENTAGE discount to 70% of the pre-discount
// total, regardless of the configured value.
var percentageCap = decimal.NewFromFloat(0.70)

var oneHundred = decimal.NewFromInt(100)

// computeDiscount returns the discount a usable promo grants against the
// pre-discount total, rounded to 2 decimal places (half-up).
func computeDiscount(p *domain.PromoCode, total decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch p.DiscountType {
	case domain.DiscountPercentage:
		discount = total.Mul(p.DiscountValue).Div(oneHundred)
		if max := total.Mul(percentageCap); discount.GreaterThan(max) {
			discount = max
		}
	default: // FIXED_AMOUNT, never discounts below zero
		discount = p.DiscountValue
		if discount.GreaterThan(total) {
			discount = total
		}
	}
	return discount.Round(2)
}

// applyPromo validates the code against the pre-discount total and consumes
// one use. The caller composes it into the surrounding transaction, so the
// counter increment commits or rolls back with the rest of the unit.
func (e *Engine) applyPromo(ctx context.Context, tx store.Tx, code string, total decimal.Decimal) (*domain.PromoCode, decimal.Decimal, error) {
	promo, err := tx.PromoByCodeForUpdate(ctx, code)
	if err == store.ErrNotFound {
		return nil, decimal.Zero, domain.PromoCodeInvalid("promo code not found or inactive")
	}
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !promo.Active {
		return nil, decimal.Zero, domain.PromoCodeInvalid("promo code not found or inactive")
	}
	if promo.CurrentUses >= promo.MaxUses {
		return nil, decimal.Zero, domain.PromoCodeInvalid("promo code is exhausted")
	}
	if !promo.InWindow(e.now()) {
		return nil, decimal.Zero, domain.PromoCodeInvalid("promo code is outside its validity window")
	}
	if total.LessThan(promo.MinOrderAmount) {
		return nil, decimal.Zero, domain.PromoCodeMinAmount(promo.MinOrderAmount, total)
	}

	if err := tx.SetPromoUses(ctx, promo.ID, promo.CurrentUses+1); err != nil {
		return nil, decimal.Zero, err
	}
	return promo, computeDiscount(promo, total), nil
}

// reapplyPromo re-validates an order's already-applied promo against a new
// total. The order's own consumed use does not count against the limit, and
// the usage counter is adjusted in the same transaction as the check: kept
// as-is when the promo still qualifies, released by one when it does not.
func (e *Engine) reapplyPromo(ctx context.Context, tx store.Tx, promoID int64, total decimal.Decimal) (decimal.Decimal, bool, error) {
	promo, err := tx.PromoByIDForUpdate(ctx, promoID)
	if err == store.ErrNotFound {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	qualifies := promo.Active &&
		promo.CurrentUses-1 < promo.MaxUses &&
		promo.InWindow(e.now()) &&
		!total.LessThan(promo.MinOrderAmount)
	if !qualifies {
		uses := promo.CurrentUses - 1
		if uses < 0 {
			uses = 0
		}
		if err := tx.SetPromoUses(ctx, promo.ID, uses); err != nil {
			return decimal.Zero, false, err
		}
		return decimal.Zero, false, nil
	}
	return computeDiscount(promo, total), true, nil
}
