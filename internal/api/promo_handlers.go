package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/promo"
)

type createPromoRequest struct {
	Code           string          `json:"code" validate:"required,min=1,max=64"`
	DiscountType   string          `json:"discount_type" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	MaxUses        int             `json:"max_uses" validate:"required,gt=0"`
	ValidFrom      time.Time       `json:"valid_from" validate:"required"`
	ValidUntil     time.Time       `json:"valid_until" validate:"required"`
}

// HandleCreatePromo registers a new promo code.
func (h *Handlers) HandleCreatePromo(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}

	var req createPromoRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var fields []domain.FieldError
	if !req.DiscountValue.IsPositive() {
		fields = append(fields, domain.FieldError{Field: "discount_value", Message: "must be greater than 0"})
	}
	if req.MinOrderAmount.IsNegative() {
		fields = append(fields, domain.FieldError{Field: "min_order_amount", Message: "must be at least 0"})
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		fields = append(fields, domain.FieldError{Field: "valid_until", Message: "must be after valid_from"})
	}
	if len(fields) > 0 {
		respondError(w, domain.ValidationFailed(fields))
		return
	}

	p, err := h.promoService.Create(r.Context(), actor, promo.CreateInput{
		Code:           req.Code,
		DiscountType:   domain.DiscountType(req.DiscountType),
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxUses:        req.MaxUses,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPromoResponse(p))
}
