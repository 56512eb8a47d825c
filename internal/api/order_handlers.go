package api

import (
	"net/http"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/order"
)

type orderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items     []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	PromoCode string             `json:"promo_code" validate:"omitempty,max=64"`
}

type updateOrderRequest struct {
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func toItemRequests(items []orderItemRequest) []order.ItemRequest {
	out := make([]order.ItemRequest, 0, len(items))
	for _, it := range items {
		out = append(out, order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// HandleCreateOrder places a new order for the authenticated user.
func (h *Handlers) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}

	var req createOrderRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	o, err := h.orderEngine.Create(r.Context(), actor, toItemRequests(req.Items), req.PromoCode)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(o))
}

// HandleGetOrder returns an order the actor is allowed to see.
func (h *Handlers) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}
	id, ok := extractPathID(r.URL.Path, "/orders/")
	if !ok {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}))
		return
	}

	o, err := h.orderEngine.Get(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

// HandleUpdateOrder replaces the item list of an order still in CREATED.
func (h *Handlers) HandleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}
	id, ok := extractPathID(r.URL.Path, "/orders/")
	if !ok {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}))
		return
	}

	var req updateOrderRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	o, err := h.orderEngine.Update(r.Context(), actor, id, toItemRequests(req.Items))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

// HandleCancelOrder cancels an order, releasing its reservations.
func (h *Handlers) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, domain.TokenInvalid())
		return
	}
	id, ok := extractPathID(r.URL.Path, "/orders/")
	if !ok {
		respondError(w, domain.ValidationFailed([]domain.FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}))
		return
	}

	o, err := h.orderEngine.Cancel(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}
