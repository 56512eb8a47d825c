package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/order"
	"github.com/example/marketplace/internal/product"
	"github.com/example/marketplace/internal/promo"
)

// Handlers bundles the HTTP handlers over the application services.
type Handlers struct {
	authService    *auth.Service
	productService *product.Service
	promoService   *promo.Service
	orderEngine    *order.Engine
}

func NewHandlers(authService *auth.Service, productService *product.Service, promoService *promo.Service, orderEngine *order.Engine) *Handlers {
	return &Handlers{
		authService:    authService,
		productService: productService,
		promoService:   promoService,
		orderEngine:    orderEngine,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

// errorBody is the error payload of the API contract.
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
}

// respondError maps a typed business error to its HTTP status and payload.
// Anything that is not a *domain.Error is an internal fault.
func respondError(w http.ResponseWriter, err error) {
	var appErr *domain.Error
	if errors.As(err, &appErr) {
		respondJSON(w, appErr.HTTPStatus, errorBody{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
		})
		return
	}

	log.Printf("[api] internal error: %v", err)
	respondJSON(w, http.StatusInternalServerError, errorBody{
		ErrorCode: "INTERNAL_ERROR",
		Message:   "internal server error",
	})
}

// extractPathID parses the numeric id following prefix in the request path.
func extractPathID(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, "/")
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
