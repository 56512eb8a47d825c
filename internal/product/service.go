// Package product implements the catalog service: CRUD over products with
// seller-ownership rules. Stock mutations during ordering live in the order
// engine, not here.
package product

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

// CreateInput carries the fields of a new product.
type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Status      domain.ProductStatus
	SellerID    *int64
}

// UpdateInput updates only its non-nil fields.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Status      *domain.ProductStatus
}

// checkOwnership lets a seller manage only their own products. Admins may
// manage any product.
func checkOwnership(p *domain.Product, actor domain.Actor) error {
	if actor.Role == domain.RoleSeller && (p.SellerID == nil || *p.SellerID != actor.ID) {
		return domain.AccessDenied("sellers can only manage their own products")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var found *domain.Product
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		p, err := tx.ProductByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domain.ProductNotFound(id)
		}
		if err != nil {
			return err
		}
		found = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Service) List(ctx context.Context, f store.ProductFilter) ([]*domain.Product, int, error) {
	var (
		products []*domain.Product
		total    int
	)
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		var err error
		products, total, err = tx.ListProducts(ctx, f)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Product, error) {
	if actor.Role == domain.RoleUser {
		return nil, domain.AccessDenied("users cannot create products")
	}

	sellerID := in.SellerID
	if actor.Role == domain.RoleSeller {
		id := actor.ID
		sellerID = &id
	}
	status := in.Status
	if status == "" {
		status = domain.ProductActive
	}

	now := time.Now()
	p := &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Status:      status,
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		return tx.CreateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, in UpdateInput) (*domain.Product, error) {
	if actor.Role == domain.RoleUser {
		return nil, domain.AccessDenied("users cannot update products")
	}

	var updated *domain.Product
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		p, err := tx.ProductByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domain.ProductNotFound(id)
		}
		if err != nil {
			return err
		}
		if err := checkOwnership(p, actor); err != nil {
			return err
		}

		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Stock != nil {
			p.Stock = *in.Stock
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.Status != nil {
			p.Status = *in.Status
		}
		p.UpdatedAt = time.Now()

		if err := tx.UpdateProduct(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Archive soft-deletes a product by moving it to ARCHIVED. Existing order
// lines keep referencing it; it just stops being orderable.
func (s *Service) Archive(ctx context.Context, actor domain.Actor, id int64) (*domain.Product, error) {
	if actor.Role == domain.RoleUser {
		return nil, domain.AccessDenied("users cannot delete products")
	}

	var archived *domain.Product
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		p, err := tx.ProductByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return domain.ProductNotFound(id)
		}
		if err != nil {
			return err
		}
		if err := checkOwnership(p, actor); err != nil {
			return err
		}

		p.Status = domain.ProductArchived
		p.UpdatedAt = time.Now()
		if err := tx.UpdateProduct(ctx, p); err != nil {
			return err
		}
		archived = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}
