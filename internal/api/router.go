package api

import (
	"net/http"
	"strings"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/metrics"
)

// NewRouter wires the HTTP surface: public auth and catalog reads, token
// protected order operations, and role protected catalog/promo writes.
func NewRouter(h *Handlers, jwtService *auth.JWTService, m *metrics.ServerMetrics) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.Auth(jwtService)
	manageRoles := middleware.RequireRole(domain.RoleSeller, domain.RoleAdmin)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", m.Handler())

	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleRegister(w, r)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleLogin(w, r)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleRefresh(w, r)
	})

	// Catalog reads are public; writes require SELLER or ADMIN.
	createProduct := authn(manageRoles(http.HandlerFunc(h.HandleCreateProduct)))
	updateProduct := authn(manageRoles(http.HandlerFunc(h.HandleUpdateProduct)))
	deleteProduct := authn(manageRoles(http.HandlerFunc(h.HandleDeleteProduct)))

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleListProducts(w, r)
		case http.MethodPost:
			createProduct.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleGetProduct(w, r)
		case http.MethodPut, http.MethodPatch:
			updateProduct.ServeHTTP(w, r)
		case http.MethodDelete:
			deleteProduct.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	createPromo := authn(manageRoles(http.HandlerFunc(h.HandleCreatePromo)))
	mux.HandleFunc("/promo-codes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		createPromo.ServeHTTP(w, r)
	})

	// Order operations all require an authenticated actor; the finer access
	// rules (ownership, seller exclusion) live in the order engine.
	createOrder := authn(http.HandlerFunc(h.HandleCreateOrder))
	getOrder := authn(http.HandlerFunc(h.HandleGetOrder))
	updateOrder := authn(http.HandlerFunc(h.HandleUpdateOrder))
	cancelOrder := authn(http.HandlerFunc(h.HandleCancelOrder))

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		createOrder.ServeHTTP(w, r)
	})
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/cancel") {
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			cancelOrder.ServeHTTP(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			getOrder.ServeHTTP(w, r)
		case http.MethodPut, http.MethodPatch:
			updateOrder.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	var handler http.Handler = mux
	handler = middleware.Metrics(m)(handler)
	handler = middleware.RequestLogging(handler)
	return handler
}
