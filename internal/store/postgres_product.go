package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/example/marketplace/internal/domain"
)

const productColumns = `id, name, COALESCE(description, ''), price, stock, category, status, seller_id, created_at, updated_at`

func (t *pgTx) CreateProduct(ctx context.Context, p *domain.Product) error {
	return t.tx.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, stock, category, status, seller_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.Status, nullableID(p.SellerID), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (t *pgTx) UpdateProduct(ctx context.Context, p *domain.Product) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE products
		 SET name = $1, description = $2, price = $3, stock = $4, category = $5, status = $6, updated_at = $7
		 WHERE id = $8`,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.Status, p.UpdatedAt, p.ID)
	return err
}

func (t *pgTx) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ProductsForUpdate batch-fetches products and locks their rows. Ascending id
// order keeps concurrent reservations from deadlocking each other.
func (t *pgTx) ProductsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[int64]*domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func (t *pgTx) ListProducts(ctx context.Context, f ProductFilter) ([]*domain.Product, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if f.Status != nil {
		args = append(args, *f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Category != nil {
		args = append(args, *f.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	var total int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Size, f.Offset())
	rows, err := t.tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM products%s ORDER BY id LIMIT $%d OFFSET $%d`,
			productColumns, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (t *pgTx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE products SET stock = stock + $1, updated_at = now() WHERE id = $2`,
		delta, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p        domain.Product
		sellerID sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.Category, &p.Status, &sellerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sellerID.Valid {
		p.SellerID = &sellerID.Int64
	}
	return &p, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
