package domain

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Stable error codes exposed to clients.
const (
	CodeProductNotFound        = "PRODUCT_NOT_FOUND"
	CodeProductInactive        = "PRODUCT_INACTIVE"
	CodeOrderNotFound          = "ORDER_NOT_FOUND"
	CodeOrderLimitExceeded     = "ORDER_LIMIT_EXCEEDED"
	CodeOrderHasActive         = "ORDER_HAS_ACTIVE"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodePromoCodeInvalid       = "PROMO_CODE_INVALID"
	CodePromoCodeMinAmount     = "PROMO_CODE_MIN_AMOUNT"
	CodeOrderOwnership         = "ORDER_OWNERSHIP_VIOLATION"
	CodeAccessDenied           = "ACCESS_DENIED"
	CodeValidation             = "VALIDATION_ERROR"
	CodeTokenExpired           = "TOKEN_EXPIRED"
	CodeTokenInvalid           = "TOKEN_INVALID"
	CodeRefreshTokenInvalid    = "REFRESH_TOKEN_INVALID"
	CodeUsernameConflict       = "USERNAME_CONFLICT"
	CodePromoCodeConflict      = "PROMO_CODE_CONFLICT"
)

// Error is a typed business failure. Every error the services return to the
// HTTP layer is one of these; the boundary maps HTTPStatus and serializes
// Code, Message and Details as the error payload.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    any
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Shortfall describes one under-stocked line of a reservation attempt.
type Shortfall struct {
	ProductID int64 `json:"product_id"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

func ProductNotFound(productID int64) *Error {
	return &Error{
		Code:       CodeProductNotFound,
		Message:    fmt.Sprintf("product %d not found", productID),
		HTTPStatus: http.StatusNotFound,
	}
}

func ErrProductInactive(productID int64) *Error {
	return &Error{
		Code:       CodeProductInactive,
		Message:    fmt.Sprintf("product %d is not active", productID),
		HTTPStatus: http.StatusConflict,
	}
}

func OrderNotFound() *Error {
	return &Error{
		Code:       CodeOrderNotFound,
		Message:    "order not found",
		HTTPStatus: http.StatusNotFound,
	}
}

func OrderLimitExceeded(minutes int) *Error {
	return &Error{
		Code:       CodeOrderLimitExceeded,
		Message:    fmt.Sprintf("operation rate limit exceeded, retry in %d minute(s)", minutes),
		HTTPStatus: http.StatusTooManyRequests,
		Details:    map[string]int{"retry_after_minutes": minutes},
	}
}

func OrderHasActive() *Error {
	return &Error{
		Code:       CodeOrderHasActive,
		Message:    "user already has an active order in CREATED or PAYMENT_PENDING state",
		HTTPStatus: http.StatusConflict,
	}
}

func InvalidStateTransition(current OrderStatus, target string) *Error {
	return &Error{
		Code:       CodeInvalidStateTransition,
		Message:    fmt.Sprintf("invalid transition from %s to %s", current, target),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]string{"current": string(current), "target": target},
	}
}

func InsufficientStock(items []Shortfall) *Error {
	return &Error{
		Code:       CodeInsufficientStock,
		Message:    "insufficient stock",
		HTTPStatus: http.StatusConflict,
		Details:    map[string][]Shortfall{"insufficient_items": items},
	}
}

func PromoCodeInvalid(reason string) *Error {
	return &Error{
		Code:       CodePromoCodeInvalid,
		Message:    reason,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func PromoCodeMinAmount(minAmount, current decimal.Decimal) *Error {
	return &Error{
		Code:       CodePromoCodeMinAmount,
		Message:    fmt.Sprintf("order total %s is below the promo minimum %s", current, minAmount),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]string{
			"min_order_amount": minAmount.String(),
			"current_amount":   current.String(),
		},
	}
}

func OrderOwnershipViolation() *Error {
	return &Error{
		Code:       CodeOrderOwnership,
		Message:    "order belongs to another user",
		HTTPStatus: http.StatusForbidden,
	}
}

func AccessDenied(message string) *Error {
	return &Error{
		Code:       CodeAccessDenied,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// FieldError is one entry of a VALIDATION_ERROR details payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ValidationFailed(fields []FieldError) *Error {
	return &Error{
		Code:       CodeValidation,
		Message:    "request validation failed",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string][]FieldError{"errors": fields},
	}
}

func TokenExpired() *Error {
	return &Error{Code: CodeTokenExpired, Message: "token has expired", HTTPStatus: http.StatusUnauthorized}
}

func TokenInvalid() *Error {
	return &Error{Code: CodeTokenInvalid, Message: "invalid token", HTTPStatus: http.StatusUnauthorized}
}

func RefreshTokenInvalid() *Error {
	return &Error{Code: CodeRefreshTokenInvalid, Message: "invalid refresh token", HTTPStatus: http.StatusUnauthorized}
}

func UsernameConflict() *Error {
	return &Error{Code: CodeUsernameConflict, Message: "username is already taken", HTTPStatus: http.StatusConflict}
}

func PromoCodeConflict() *Error {
	return &Error{Code: CodePromoCodeConflict, Message: "promo code already exists", HTTPStatus: http.StatusConflict}
}
