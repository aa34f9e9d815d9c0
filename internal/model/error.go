package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeEmptyOrder              = "EMPTY_ORDER"
	ErrCodeMissingShipping         = "MISSING_SHIPPING_INFO"
	ErrCodeInvalidPaymentMethod    = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeNoStatusChange          = "NO_STATUS_CHANGE"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeProductInactive         = "PRODUCT_INACTIVE"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeCartItemNotFound        = "CART_ITEM_NOT_FOUND"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeDuplicateRequest        = "DUPLICATE_REQUEST"
	ErrCodeIdempotencyKeyReused    = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// ErrorKind classifies a DomainError for propagation and transport mapping.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindInsufficientStock
	KindNotFound
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// DomainError is a business rule failure. None of them are retried.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on kind and code so that errors.Is works against the sentinels
// below even when the message was specialised.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with the given code.
func NewValidationError(code, format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, code, fmt.Sprintf(format, args...))
}

// NewInsufficientStockError reports that a product cannot cover the requested quantity.
func NewInsufficientStockError(productID int64, available, requested int) *DomainError {
	return NewDomainError(KindInsufficientStock, ErrCodeInsufficientStock,
		fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", productID, available, requested))
}

// NewProductNotFoundError reports a product id unknown to the catalog.
func NewProductNotFoundError(productID int64) *DomainError {
	return NewDomainError(KindNotFound, ErrCodeProductNotFound,
		fmt.Sprintf("product %d not found", productID))
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Common domain errors
var (
	ErrInvalidQuantity   = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be between 1 and 10000")
	ErrEmptyOrder        = NewDomainError(KindValidation, ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrMissingShipping   = NewDomainError(KindValidation, ErrCodeMissingShipping, "Shipping name, phone and address are required")
	ErrNoStatusChange    = NewDomainError(KindValidation, ErrCodeNoStatusChange, "Either status or paymentStatus must be provided")
	ErrProductNotFound   = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrInsufficientStock = NewDomainError(KindInsufficientStock, ErrCodeInsufficientStock, "Insufficient stock")
	ErrOrderNotFound     = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrCartItemNotFound  = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "Cart item not found")
	ErrNotOrderOwner     = NewDomainError(KindUnauthorized, ErrCodeForbidden, "Order does not belong to the requesting user")
)
