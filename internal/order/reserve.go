package order

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store"
)

// reservedLine pairs a locked product with the aggregated quantity reserved
// from it.
type reservedLine struct {
	Product  *domain.Product
	Quantity int
}

// reserveItems validates and reserves stock for the requested lines in two
// passes: every check runs against every line first, stock is mutated only
// after all of them pass. Either every line is reserved or none is, so no
// compensating rollback of partial decrements is ever needed.
func reserveItems(ctx context.Context, tx store.Tx, items []ItemRequest) ([]reservedLine, decimal.Decimal, error) {
	// Merge duplicate product ids, keeping first-appearance order so the
	// "first missing id" is deterministic from the caller's point of view.
	quantities := make(map[int64]int, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if _, seen := quantities[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}

	products, err := tx.ProductsForUpdate(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	for _, id := range ids {
		if products[id] == nil {
			return nil, decimal.Zero, domain.ProductNotFound(id)
		}
	}
	for _, id := range ids {
		if products[id].Status != domain.ProductActive {
			return nil, decimal.Zero, domain.ErrProductInactive(id)
		}
	}

	// Collect every shortfall before failing so the caller can report all
	// problem lines in one round trip.
	var shortfalls []domain.Shortfall
	for _, id := range ids {
		if p := products[id]; p.Stock < quantities[id] {
			shortfalls = append(shortfalls, domain.Shortfall{
				ProductID: id,
				Requested: quantities[id],
				Available: p.Stock,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, decimal.Zero, domain.InsufficientStock(shortfalls)
	}

	lines := make([]reservedLine, 0, len(ids))
	total := decimal.Zero
	for _, id := range ids {
		qty := quantities[id]
		if err := tx.AdjustStock(ctx, id, -qty); err != nil {
			return nil, decimal.Zero, err
		}
		p := products[id]
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
		lines = append(lines, reservedLine{Product: p, Quantity: qty})
	}
	return lines, total, nil
}

// releaseItems returns an order's reserved quantities to stock. Products are
// released in ascending id order, matching the lock order of reservation.
func releaseItems(ctx context.Context, tx store.Tx, items []domain.OrderItem) error {
	sorted := append([]domain.OrderItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	for _, it := range sorted {
		if err := tx.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}
