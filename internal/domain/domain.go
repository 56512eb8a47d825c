package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the closed set of actor roles known to the marketplace.
type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated identity a request acts as. It is resolved by
// the auth middleware and trusted by the services.
type Actor struct {
	ID   int64
	Role Role
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
	ProductArchived ProductStatus = "ARCHIVED"
)

func ValidProductStatus(s string) bool {
	switch ProductStatus(s) {
	case ProductActive, ProductInactive, ProductArchived:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderCreated        OrderStatus = "CREATED"
	OrderPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderPaid           OrderStatus = "PAID"
	OrderShipped        OrderStatus = "SHIPPED"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCanceled       OrderStatus = "CANCELED"
)

// orderTransitions is the full transition table for the order state machine.
// Terminal states map to an empty set.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderCreated:        {OrderPaymentPending, OrderCanceled},
	OrderPaymentPending: {OrderPaid, OrderCanceled},
	OrderPaid:           {OrderShipped},
	OrderShipped:        {OrderCompleted},
	OrderCompleted:      {},
	OrderCanceled:       {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type DiscountType string

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

func ValidDiscountType(s string) bool {
	switch DiscountType(s) {
	case DiscountPercentage, DiscountFixedAmount:
		return true
	}
	return false
}

// OperationType identifies a rate-limited user action in the operation log.
type OperationType string

const (
	OpCreateOrder OperationType = "CREATE_ORDER"
	OpUpdateOrder OperationType = "UPDATE_ORDER"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Status      ProductStatus
	SellerID    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PromoCode struct {
	ID             int64
	Code           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUses        int
	CurrentUses    int
	ValidFrom      time.Time
	ValidUntil     time.Time
	Active         bool
}

// InWindow reports whether now falls inside [ValidFrom, ValidUntil).
func (p *PromoCode) InWindow(now time.Time) bool {
	return !now.Before(p.ValidFrom) && now.Before(p.ValidUntil)
}

type Order struct {
	ID             int64
	UserID         int64
	Status         OrderStatus
	PromoCodeID    *int64
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the order blocks further creates for its user.
func (o *Order) IsActive() bool {
	return o.Status == OrderCreated || o.Status == OrderPaymentPending
}

// OrderItem is one line of an order. PriceAtOrder is the price snapshot taken
// at reservation time; line totals never recompute from the live product.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// UserOperation is an append-only log entry used for rate limiting.
type UserOperation struct {
	ID        int64
	UserID    int64
	Type      OperationType
	CreatedAt time.Time
}
