// Package promo implements promo-code administration. Consumption of promo
// uses during ordering is handled by the order engine.
package promo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type CreateInput struct {
	Code           string
	DiscountType   domain.DiscountType
	DiscountValue  decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUses        int
	ValidFrom      time.Time
	ValidUntil     time.Time
}

// Create registers a new promo code. Codes are unique; a duplicate fails
// with PROMO_CODE_CONFLICT.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.PromoCode, error) {
	if actor.Role == domain.RoleUser {
		return nil, domain.AccessDenied("users cannot create promo codes")
	}

	var created *domain.PromoCode
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		_, err := tx.PromoByCode(ctx, in.Code)
		if err == nil {
			return domain.PromoCodeConflict()
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		p := &domain.PromoCode{
			Code:           in.Code,
			DiscountType:   in.DiscountType,
			DiscountValue:  in.DiscountValue,
			MinOrderAmount: in.MinOrderAmount,
			MaxUses:        in.MaxUses,
			CurrentUses:    0,
			ValidFrom:      in.ValidFrom,
			ValidUntil:     in.ValidUntil,
			Active:         true,
		}
		if err := tx.CreatePromoCode(ctx, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
