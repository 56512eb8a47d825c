package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/metrics"
	"github.com/example/marketplace/internal/order"
	"github.com/example/marketplace/internal/product"
	"github.com/example/marketplace/internal/promo"
	"github.com/example/marketplace/internal/store/memory"
)

type testAPI struct {
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st := memory.NewStore()
	jwtService := auth.NewJWTService("test-secret-key-for-testing-purposes", 15*time.Minute, 30*24*time.Hour)
	handlers := NewHandlers(
		auth.NewService(st, jwtService),
		product.NewService(st),
		promo.NewService(st),
		order.NewEngine(st, order.Config{RateLimitWindow: time.Minute}, nil),
	)
	router := NewRouter(handlers, jwtService, metrics.NewServerMetrics())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testAPI{server: server}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func (a *testAPI) register(t *testing.T, username, role string) string {
	t.Helper()
	resp, _ := a.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := a.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (a *testAPI) createProduct(t *testing.T, token string, price string, stock int) int64 {
	t.Helper()
	resp, body := a.do(t, http.MethodPost, "/products", token, map[string]any{
		"name":     "widget",
		"price":    price,
		"stock":    stock,
		"category": "tools",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return int64(body["id"].(float64))
}

func TestAPI_RegisterLoginRefresh(t *testing.T) {
	a := newTestAPI(t)

	resp, body := a.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "USER", body["role"])
	assert.NotContains(t, body, "password_hash")

	resp, body = a.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, refresh)

	resp, body = a.do(t, http.MethodPost, "/auth/refresh", "", map[string]any{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEqual(t, refresh, body["refresh_token"])
}

func TestAPI_RegisterValidation(t *testing.T) {
	a := newTestAPI(t)

	resp, body := a.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"username": "al",
		"password": "short",
		"role":     "WIZARD",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body["error_code"])
	details := body["details"].(map[string]any)
	errs := details["errors"].([]any)
	assert.Len(t, errs, 3)
}

func TestAPI_ProductLifecycle(t *testing.T) {
	a := newTestAPI(t)
	seller := a.register(t, "shop", "SELLER")

	id := a.createProduct(t, seller, "9.99", 5)

	// Public read, no token.
	resp, body := a.do(t, http.MethodGet, fmt.Sprintf("/products/%d", id), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "9.99", body["price"])
	assert.Equal(t, "ACTIVE", body["status"])

	resp, body = a.do(t, http.MethodGet, "/products?page=1&size=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	resp, body = a.do(t, http.MethodPatch, fmt.Sprintf("/products/%d", id), seller, map[string]any{
		"price": "12.00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "12.00", body["price"])

	// Delete archives instead of removing.
	resp, body = a.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", id), seller, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ARCHIVED", body["status"])
}

func TestAPI_ProductWriteRequiresRole(t *testing.T) {
	a := newTestAPI(t)
	user := a.register(t, "alice", "USER")

	resp, body := a.do(t, http.MethodPost, "/products", user, map[string]any{
		"name": "widget", "price": "9.99", "stock": 5,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ACCESS_DENIED", body["error_code"])

	resp, body = a.do(t, http.MethodPost, "/products", "", map[string]any{
		"name": "widget", "price": "9.99", "stock": 5,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_INVALID", body["error_code"])
}

func TestAPI_OrderLifecycle(t *testing.T) {
	a := newTestAPI(t)
	seller := a.register(t, "shop", "SELLER")
	user := a.register(t, "alice", "USER")
	productID := a.createProduct(t, seller, "10.00", 5)

	resp, body := a.do(t, http.MethodPost, "/orders", user, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "CREATED", body["status"])
	assert.Equal(t, "20.00", body["total_amount"])
	orderID := int64(body["id"].(float64))

	resp, body = a.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)

	resp, body = a.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", orderID), user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CANCELED", body["status"])

	// Stock is back after the cancel.
	resp, body = a.do(t, http.MethodGet, fmt.Sprintf("/products/%d", productID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), body["stock"])
}

func TestAPI_OrderInsufficientStockPayload(t *testing.T) {
	a := newTestAPI(t)
	seller := a.register(t, "shop", "SELLER")
	user := a.register(t, "alice", "USER")
	productID := a.createProduct(t, seller, "10.00", 1)

	resp, body := a.do(t, http.MethodPost, "/orders", user, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 3}},
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["error_code"])
	details := body["details"].(map[string]any)
	lines := details["insufficient_items"].([]any)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.Equal(t, float64(productID), line["product_id"])
	assert.Equal(t, float64(3), line["requested"])
	assert.Equal(t, float64(1), line["available"])
}

func TestAPI_SellerCannotOrder(t *testing.T) {
	a := newTestAPI(t)
	seller := a.register(t, "shop", "SELLER")
	productID := a.createProduct(t, seller, "10.00", 5)

	resp, body := a.do(t, http.MethodPost, "/orders", seller, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 1}},
	})

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "ACCESS_DENIED", body["error_code"])
}

func TestAPI_PromoCreateAndOrderWithPromo(t *testing.T) {
	a := newTestAPI(t)
	seller := a.register(t, "shop", "SELLER")
	user := a.register(t, "alice", "USER")
	productID := a.createProduct(t, seller, "100.00", 5)

	resp, body := a.do(t, http.MethodPost, "/promo-codes", seller, map[string]any{
		"code":          "BIG90",
		"discount_type": "PERCENTAGE",
		"discount_value": "90",
		"max_uses":      10,
		"valid_from":    time.Now().Add(-time.Hour).Format(time.RFC3339),
		"valid_until":   time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	resp, body = a.do(t, http.MethodPost, "/orders", user, map[string]any{
		"items":      []map[string]any{{"product_id": productID, "quantity": 1}},
		"promo_code": "BIG90",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	// 90% is capped at 70% of the total.
	assert.Equal(t, "70.00", body["discount_amount"])
	assert.Equal(t, "30.00", body["total_amount"])
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	a := newTestAPI(t)

	resp, body := a.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, _ = a.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_RequestIDHeader(t *testing.T) {
	a := newTestAPI(t)

	resp, _ := a.do(t, http.MethodGet, "/health", "", nil)

	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
