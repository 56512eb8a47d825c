package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/marketplace/internal/domain"
)

// ErrNotFound is returned by lookups when no row matches. Services translate
// it into the appropriate typed business error.
var ErrNotFound = errors.New("not found")

// Store is the persistence entry point. Every use case runs inside exactly
// one WithinTx call: fn either commits as a whole or every mutation it made
// is rolled back.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the unit-of-work handle passed through every sub-operation of a use
// case. All reads and writes made through the same Tx share one transaction.
type Tx interface {
	Users
	Products
	Promos
	Orders
	Operations
}

type Users interface {
	CreateUser(ctx context.Context, u *domain.User) error
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
	// LockUser acquires a row lock on the user, serializing concurrent
	// order operations for the same account.
	LockUser(ctx context.Context, id int64) error

	CreateRefreshToken(ctx context.Context, t *domain.RefreshToken) error
	RefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, id int64) error
}

// ProductFilter narrows and paginates product listings. Page is 1-based.
type ProductFilter struct {
	Status   *domain.ProductStatus
	Category *string
	Page     int
	Size     int
}

// Offset is the number of rows to skip for the requested page.
func (f ProductFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Size
}

type Products interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	ProductByID(ctx context.Context, id int64) (*domain.Product, error)
	// ProductsForUpdate fetches all requested products in one batch and
	// locks their rows in ascending id order. Missing ids are simply
	// absent from the result map.
	ProductsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*domain.Product, int, error)
	// AdjustStock adds delta (which may be negative) to the product's
	// stock. The products table constrains stock to stay non-negative.
	AdjustStock(ctx context.Context, productID int64, delta int) error
}

type Promos interface {
	CreatePromoCode(ctx context.Context, p *domain.PromoCode) error
	PromoByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	PromoByCodeForUpdate(ctx context.Context, code string) (*domain.PromoCode, error)
	PromoByIDForUpdate(ctx context.Context, id int64) (*domain.PromoCode, error)
	SetPromoUses(ctx context.Context, id int64, uses int) error
}

type Orders interface {
	// CreateOrder inserts the order and its items, assigning their ids.
	CreateOrder(ctx context.Context, o *domain.Order) error
	OrderByID(ctx context.Context, id int64) (*domain.Order, error)
	OrderByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	HasActiveOrder(ctx context.Context, userID int64) (bool, error)
	// UpdateOrder persists status, totals, promo reference and updated_at.
	UpdateOrder(ctx context.Context, o *domain.Order) error
	// ReplaceOrderItems deletes the order's current items and inserts the
	// given ones.
	ReplaceOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) error
}

type Operations interface {
	// LastOperation returns the timestamp of the user's most recent
	// operation of the given type, if any.
	LastOperation(ctx context.Context, userID int64, op domain.OperationType) (time.Time, bool, error)
	AppendOperation(ctx context.Context, userID int64, op domain.OperationType, at time.Time) error
}
