package api

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/product"
	"github.com/example/marketplace/internal/store"
)

type createProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"max=100"`
	Status      string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED"`
	SellerID    *int64          `json:"seller_id" validate:"omitempty,gt=0"`
}

type updateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Status      *string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED"`
}

// HandleListProducts returns a paginated catalog page, optionally filtered by
// status and category. This endpoint is public.
func (h *Handlers) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := store.ProductFilter{Page: 1, Size: 20}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Page = n
		}
	}
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			f.Size = n
		}
	}
	if v := q.Get("status"); v != "" {
		if !domain.ValidProductStatus(v) {
			respondError(w, domain.ValidationFailed([]domain.FieldError{
				{Field: "status", Message: "must be one of: ACTIVE INACTIVE ARCHIVED"},
			}))
			return
		}
		status := domain.ProductStatus(v)
		f.Status = &status
	}
	if v := q.Get("category"); v != "" {
		f.Category = &v
	}

	products, total, err := h.productService.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	respondJSON(w, http.StatusOK, productListResponse{
		Items: items,
		Total: total,
		Page:  f.Page,
		Size:  f.Size,
	})
}

// HandleGetProduct returns a single product by id.
func (h *Handlers) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := extractPathID(r.URL.Path, "/products/")
	if !ok {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}))
		return
	}

	p, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

// HandleCreateProduct creates a product. Sellers always own what they create;
// admins may create on behalf of a seller via seller_id.
func (h *Handlers) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}

	var req createProductRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "price", Message: "must be greater than 0"},
		}))
		return
	}

	p, err := h.productService.Create(r.Context(), actor, product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Status:      domain.ProductStatus(req.Status),
		SellerID:    req.SellerID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toProductResponse(p))
}

// HandleUpdateProduct applies a partial update to a product.
func (h *Handlers) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}
	id, ok := extractPathID(r.URL.Path, "/products/")
	if !ok {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}))
		return
	}

	var req updateProductRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Price != nil && (req.Price.IsNegative() || req.Price.IsZero()) {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "price", Message: "must be greater than 0"},
		}))
		return
	}

	in := product.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	if req.Status != nil {
		status := domain.ProductStatus(*req.Status)
		in.Status = &status
	}

	p, err := h.productService.Update(r.Context(), actor, id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

// HandleDeleteProduct archives a product. Archival is a soft delete; the row
// stays so historical order lines keep their reference.
func (h *Handlers) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}
	id, ok := extractPathID(r.URL.Path, "/products/")
	if !ok {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}))
		return
	}

	p, err := h.productService.Archive(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}
