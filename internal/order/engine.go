// Package order implements the order lifecycle and inventory-reservation
// engine: creating, reading, updating and canceling orders as single atomic
// transactions over the shared product, promo, order and operation-log state.
package order

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store"
)

// Lifecycle event types published after commit.
const (
	EventOrderCreated  = "order.created"
	EventOrderUpdated  = "order.updated"
	EventOrderCanceled = "order.canceled"
)

// Publisher receives order lifecycle events. Publishing is best-effort and
// happens outside the transaction.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, o *domain.Order) error
}

// Config carries the engine's tunables.
type Config struct {
	// RateLimitWindow is the minimum interval between two rate-limited
	// operations of the same type for one user.
	RateLimitWindow time.Duration
}

// ItemRequest is one requested order line. The same product may appear more
// than once; quantities are merged during reservation.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// Engine orchestrates all order use cases.
type Engine struct {
	store     store.Store
	cfg       Config
	publisher Publisher
	now       func() time.Time
}

// NewEngine builds an engine. publisher may be nil to disable events.
func NewEngine(st store.Store, cfg Config, publisher Publisher) *Engine {
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	return &Engine{
		store:     st,
		cfg:       cfg,
		publisher: publisher,
		now:       time.Now,
	}
}

// checkOrderAccess enforces the role rules: sellers may never touch orders,
// users only their own. Admins are not restricted by ownership.
func checkOrderAccess(o *domain.Order, actor domain.Actor) error {
	if actor.Role == domain.RoleSeller {
		return domain.AccessDenied("sellers cannot access orders")
	}
	if actor.Role == domain.RoleUser && o.UserID != actor.ID {
		return domain.OrderOwnershipViolation()
	}
	return nil
}

// Create turns a cart of requested items into a priced, stock-reserved,
// promo-discounted order in state CREATED.
func (e *Engine) Create(ctx context.Context, actor domain.Actor, items []ItemRequest, promoCode string) (*domain.Order, error) {
	if actor.Role == domain.RoleSeller {
		return nil, domain.AccessDenied("sellers cannot create orders")
	}

	var created *domain.Order
	err := e.store.WithinTx(ctx, func(tx store.Tx) error {
		// The user row is the serialization point for the rate-limit
		// and active-order checks of concurrent creates.
		if err := tx.LockUser(ctx, actor.ID); err != nil {
			return err
		}
		if err := e.checkRateLimit(ctx, tx, actor.ID, domain.OpCreateOrder); err != nil {
			return err
		}
		active, err := tx.HasActiveOrder(ctx, actor.ID)
		if err != nil {
			return err
		}
		if active {
			return domain.OrderHasActive()
		}

		lines, total, err := reserveItems(ctx, tx, items)
		if err != nil {
			return err
		}

		var promoID *int64
		discount := decimal.Zero
		if promoCode != "" {
			promo, d, err := e.applyPromo(ctx, tx, promoCode, total)
			if err != nil {
				return err
			}
			promoID = &promo.ID
			discount = d
		}

		now := e.now()
		o := &domain.Order{
			UserID:         actor.ID,
			Status:         domain.OrderCreated,
			PromoCodeID:    promoID,
			TotalAmount:    total.Sub(discount),
			DiscountAmount: discount,
			Items:          orderItems(lines),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		// Logged only after everything else in the unit succeeded, so a
		// failed attempt never consumes the user's rate-limit window.
		if err := tx.AppendOperation(ctx, actor.ID, domain.OpCreateOrder, now); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, EventOrderCreated, created)
	return created, nil
}

// Get fetches an order with its items, enforcing access rules.
func (e *Engine) Get(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	var found *domain.Order
	err := e.store.WithinTx(ctx, func(tx store.Tx) error {
		o, err := tx.OrderByID(ctx, orderID)
		if err == store.ErrNotFound {
			return domain.OrderNotFound()
		}
		if err != nil {
			return err
		}
		if err := checkOrderAccess(o, actor); err != nil {
			return err
		}
		found = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Update replaces the item list of a CREATED order: previous reservations are
// released, the new list is reserved, and a previously applied promo is
// re-validated against the new total, silently dropped if it no longer
// qualifies.
func (e *Engine) Update(ctx context.Context, actor domain.Actor, orderID int64, items []ItemRequest) (*domain.Order, error) {
	if actor.Role == domain.RoleSeller {
		return nil, domain.AccessDenied("sellers cannot update orders")
	}

	var updated *domain.Order
	err := e.store.WithinTx(ctx, func(tx store.Tx) error {
		o, err := tx.OrderByIDForUpdate(ctx, orderID)
		if err == store.ErrNotFound {
			return domain.OrderNotFound()
		}
		if err != nil {
			return err
		}
		if err := checkOrderAccess(o, actor); err != nil {
			return err
		}
		if o.Status != domain.OrderCreated {
			return domain.InvalidStateTransition(o.Status, "UPDATE")
		}
		if err := tx.LockUser(ctx, actor.ID); err != nil {
			return err
		}
		if err := e.checkRateLimit(ctx, tx, actor.ID, domain.OpUpdateOrder); err != nil {
			return err
		}

		if err := releaseItems(ctx, tx, o.Items); err != nil {
			return err
		}

		lines, total, err := reserveItems(ctx, tx, items)
		if err != nil {
			return err
		}

		discount := decimal.Zero
		if o.PromoCodeID != nil {
			d, keep, err := e.reapplyPromo(ctx, tx, *o.PromoCodeID, total)
			if err != nil {
				return err
			}
			if keep {
				discount = d
			} else {
				o.PromoCodeID = nil
			}
		}

		now := e.now()
		o.TotalAmount = total.Sub(discount)
		o.DiscountAmount = discount
		o.UpdatedAt = now
		newItems := orderItems(lines)
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.ReplaceOrderItems(ctx, o.ID, newItems); err != nil {
			return err
		}
		o.Items = newItems
		if err := tx.AppendOperation(ctx, actor.ID, domain.OpUpdateOrder, now); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, EventOrderUpdated, updated)
	return updated, nil
}

// Cancel moves a CREATED or PAYMENT_PENDING order to CANCELED, returning all
// reserved stock and the promo use.
func (e *Engine) Cancel(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	if actor.Role == domain.RoleSeller {
		return nil, domain.AccessDenied("sellers cannot cancel orders")
	}

	var canceled *domain.Order
	err := e.store.WithinTx(ctx, func(tx store.Tx) error {
		o, err := tx.OrderByIDForUpdate(ctx, orderID)
		if err == store.ErrNotFound {
			return domain.OrderNotFound()
		}
		if err != nil {
			return err
		}
		if err := checkOrderAccess(o, actor); err != nil {
			return err
		}
		if !domain.CanTransition(o.Status, domain.OrderCanceled) {
			return domain.InvalidStateTransition(o.Status, string(domain.OrderCanceled))
		}

		if err := releaseItems(ctx, tx, o.Items); err != nil {
			return err
		}

		if o.PromoCodeID != nil {
			promo, err := tx.PromoByIDForUpdate(ctx, *o.PromoCodeID)
			if err != nil && err != store.ErrNotFound {
				return err
			}
			if promo != nil && promo.CurrentUses > 0 {
				if err := tx.SetPromoUses(ctx, promo.ID, promo.CurrentUses-1); err != nil {
					return err
				}
			}
		}

		o.Status = domain.OrderCanceled
		o.UpdatedAt = e.now()
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		canceled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, EventOrderCanceled, canceled)
	return canceled, nil
}

func (e *Engine) publish(ctx context.Context, eventType string, o *domain.Order) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishOrderEvent(ctx, eventType, o); err != nil {
		log.Printf("[order] failed to publish %s for order %d: %v", eventType, o.ID, err)
	}
}

func orderItems(lines []reservedLine) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID:    l.Product.ID,
			Quantity:     l.Quantity,
			PriceAtOrder: l.Product.Price,
		})
	}
	return items
}
