package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product in a user's cart. (UserID, ProductID) is unique
// and Quantity is always at least one.
type CartItem struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ProductID int64     `db:"product_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Product is populated when the cart is read together with the catalog.
	Product *Product `db:"-"`
}

// AddCartItemRequest represents the request payload for adding to the cart.
type AddCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"`
}

// UpdateCartItemRequest sets the quantity of a cart line. Zero or less removes it.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartLine is the public view of a cart item.
type CartLine struct {
	ProductID      int64            `json:"productId"`
	ProductName    string           `json:"productName"`
	Price          decimal.Decimal  `json:"price"`
	SalePrice      *decimal.Decimal `json:"salePrice,omitempty"`
	EffectivePrice decimal.Decimal  `json:"effectivePrice"`
	Quantity       int              `json:"quantity"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	StockQuantity  int              `json:"stockQuantity"`
	Status         ProductStatus    `json:"status"`
}

// CartView is a user's cart with computed totals.
type CartView struct {
	Items         []CartLine      `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}
