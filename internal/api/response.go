package api

import (
	"time"

	"github.com/example/marketplace/internal/domain"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	SellerID    *int64    `json:"seller_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Category:    p.Category,
		Status:      string(p.Status),
		SellerID:    p.SellerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type productListResponse struct {
	Items []productResponse `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

type promoResponse struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  string    `json:"discount_value"`
	MinOrderAmount string    `json:"min_order_amount"`
	MaxUses        int       `json:"max_uses"`
	CurrentUses    int       `json:"current_uses"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until"`
	Active         bool      `json:"active"`
}

func toPromoResponse(p *domain.PromoCode) promoResponse {
	return promoResponse{
		ID:             p.ID,
		Code:           p.Code,
		DiscountType:   string(p.DiscountType),
		DiscountValue:  p.DiscountValue.StringFixed(2),
		MinOrderAmount: p.MinOrderAmount.StringFixed(2),
		MaxUses:        p.MaxUses,
		CurrentUses:    p.CurrentUses,
		ValidFrom:      p.ValidFrom,
		ValidUntil:     p.ValidUntil,
		Active:         p.Active,
	}
}

type orderItemResponse struct {
	ProductID    int64  `json:"product_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}

type orderResponse struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"user_id"`
	Status         string              `json:"status"`
	PromoCodeID    *int64              `json:"promo_code_id,omitempty"`
	TotalAmount    string              `json:"total_amount"`
	DiscountAmount string              `json:"discount_amount"`
	Items          []orderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder.StringFixed(2),
		})
	}
	return orderResponse{
		ID:             o.ID,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PromoCodeID:    o.PromoCodeID,
		TotalAmount:    o.TotalAmount.StringFixed(2),
		DiscountAmount: o.DiscountAmount.StringFixed(2),
		Items:          items,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
