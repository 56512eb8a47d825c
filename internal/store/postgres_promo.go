package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/marketplace/internal/domain"
)

const promoColumns = `id, code, discount_type, discount_value, min_order_amount, max_uses, current_uses, valid_from, valid_until, active`

func (t *pgTx) CreatePromoCode(ctx context.Context, p *domain.PromoCode) error {
	return t.tx.QueryRowContext(ctx,
		`INSERT INTO promo_codes (code, discount_type, discount_value, min_order_amount, max_uses, current_uses, valid_from, valid_until, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		p.Code, p.DiscountType, p.DiscountValue, p.MinOrderAmount,
		p.MaxUses, p.CurrentUses, p.ValidFrom, p.ValidUntil, p.Active,
	).Scan(&p.ID)
}

func (t *pgTx) PromoByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	return t.scanPromo(t.tx.QueryRowContext(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE code = $1`, code))
}

func (t *pgTx) PromoByCodeForUpdate(ctx context.Context, code string) (*domain.PromoCode, error) {
	return t.scanPromo(t.tx.QueryRowContext(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE code = $1 FOR UPDATE`, code))
}

func (t *pgTx) PromoByIDForUpdate(ctx context.Context, id int64) (*domain.PromoCode, error) {
	return t.scanPromo(t.tx.QueryRowContext(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE id = $1 FOR UPDATE`, id))
}

func (t *pgTx) SetPromoUses(ctx context.Context, id int64, uses int) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE promo_codes SET current_uses = $1 WHERE id = $2`, uses, id)
	return err
}

func (t *pgTx) scanPromo(row *sql.Row) (*domain.PromoCode, error) {
	var p domain.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinOrderAmount,
		&p.MaxUses, &p.CurrentUses, &p.ValidFrom, &p.ValidUntil, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
