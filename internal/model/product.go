package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus tells whether a product may be sold.
type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductInactive
}

// Product represents a travel product in the catalogue.
type Product struct {
	ID            int64               `json:"id" db:"id"`
	SKU           string              `json:"sku" db:"sku"`
	Name          string              `json:"name" db:"name"`
	Category      string              `json:"category" db:"category"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	SalePrice     decimal.NullDecimal `json:"salePrice" db:"sale_price"`
	StockQuantity int                 `json:"stockQuantity" db:"stock_quantity"`
	Status        ProductStatus       `json:"status" db:"status"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice is the sale price when one is set and does not exceed the
// base price, otherwise the base price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThanOrEqual(p.Price) {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// IsActive reports whether the product can be added to a cart or ordered.
func (p *Product) IsActive() bool {
	return p.Status == ProductActive
}
