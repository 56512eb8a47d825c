package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/marketplace/internal/domain"
)

const orderColumns = `id, user_id, status, promo_code_id, total_amount, discount_amount, created_at, updated_at`

func (t *pgTx) CreateOrder(ctx context.Context, o *domain.Order) error {
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, status, promo_code_id, total_amount, discount_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		o.UserID, o.Status, nullableID(o.PromoCodeID), o.TotalAmount, o.DiscountAmount, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return err
	}
	return t.insertItems(ctx, o.ID, o.Items)
}

func (t *pgTx) OrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	return t.fetchOrder(ctx, id, false)
}

func (t *pgTx) OrderByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return t.fetchOrder(ctx, id, true)
}

func (t *pgTx) fetchOrder(ctx context.Context, id int64, forUpdate bool) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		o       domain.Order
		promoID sql.NullInt64
	)
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.Status, &promoID,
		&o.TotalAmount, &o.DiscountAmount, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if promoID.Valid {
		o.PromoCodeID = &promoID.Int64
	}

	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price_at_order
		 FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceAtOrder); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (t *pgTx) HasActiveOrder(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM orders
			WHERE user_id = $1 AND status IN ($2, $3)
		 )`,
		userID, domain.OrderCreated, domain.OrderPaymentPending,
	).Scan(&exists)
	return exists, err
}

func (t *pgTx) UpdateOrder(ctx context.Context, o *domain.Order) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, promo_code_id = $2, total_amount = $3, discount_amount = $4, updated_at = $5
		 WHERE id = $6`,
		o.Status, nullableID(o.PromoCodeID), o.TotalAmount, o.DiscountAmount, o.UpdatedAt, o.ID)
	return err
}

func (t *pgTx) ReplaceOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return err
	}
	return t.insertItems(ctx, orderID, items)
}

func (t *pgTx) insertItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
		err := t.tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price_at_order)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			orderID, items[i].ProductID, items[i].Quantity, items[i].PriceAtOrder,
		).Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}
