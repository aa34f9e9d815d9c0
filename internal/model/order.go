package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingInfo is the delivery destination captured when the order is placed.
type ShippingInfo struct {
	Name    string `json:"shippingName" validate:"max=100"`
	Phone   string `json:"shippingPhone" validate:"max=30"`
	Address string `json:"shippingAddress" validate:"max=500"`
}

// Order represents a customer order. Only Status and PaymentStatus change
// after creation.
type Order struct {
	ID             uuid.UUID       `db:"id"`
	OrderNumber    string          `db:"order_number"`
	UserID         int64           `db:"user_id"`
	Status         OrderStatus     `db:"status"`
	PaymentMethod  PaymentMethod   `db:"payment_method"`
	PaymentStatus  PaymentStatus   `db:"payment_status"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	FinalAmount    decimal.Decimal `db:"final_amount"`
	Shipping       ShippingInfo
	OrderedAt      time.Time `db:"ordered_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	Items          []OrderItem
}

// OrderItem is an immutable line of an order. ProductName and UnitPrice are
// copied from the product when the order is placed.
type OrderItem struct {
	ID          uuid.UUID       `db:"id"`
	OrderID     uuid.UUID       `db:"order_id"`
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Quantity    int             `db:"quantity"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}

// OrderDraft carries the header values of an order that is about to be created.
type OrderDraft struct {
	OrderNumber    string
	UserID         int64
	PaymentMethod  PaymentMethod
	Shipping       ShippingInfo
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	OrderedAt      time.Time
}

// NewOrder builds a PLACED order with PENDING payment and attaches the full
// item snapshot in one step. The items slice is copied.
func NewOrder(d OrderDraft, items []OrderItem) *Order {
	id := uuid.New()
	snapshot := slices.Clone(items)
	for i := range snapshot {
		if snapshot[i].ID == uuid.Nil {
			snapshot[i].ID = uuid.New()
		}
		snapshot[i].OrderID = id
	}

	return &Order{
		ID:             id,
		OrderNumber:    d.OrderNumber,
		UserID:         d.UserID,
		Status:         StatusPlaced,
		PaymentMethod:  d.PaymentMethod,
		PaymentStatus:  PaymentPending,
		TotalAmount:    d.TotalAmount,
		DiscountAmount: d.DiscountAmount,
		FinalAmount:    d.FinalAmount,
		Shipping:       d.Shipping,
		OrderedAt:      d.OrderedAt,
		UpdatedAt:      d.OrderedAt,
		Items:          snapshot,
	}
}

// CreateOrderRequest represents the request payload for placing an order.
type CreateOrderRequest struct {
	ShippingInfo
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
	Items         []OrderItemRequest `json:"items"`
}

// MaxLineQuantity caps the units of one product in an order line or a cart
// line. Lines repeating a product count against the cap together.
const MaxLineQuantity = 10000

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// UpdateOrderStatusRequest carries an administrative status change. At
// least one field must be set.
type UpdateOrderStatusRequest struct {
	Status        *OrderStatus   `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
}

// OrderItemDetail is the public view of an order line.
type OrderItemDetail struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// OrderDetail is the fully materialised view of a single order.
type OrderDetail struct {
	OrderNumber     string            `json:"orderNumber"`
	Status          OrderStatus       `json:"status"`
	PaymentMethod   PaymentMethod     `json:"paymentMethod"`
	PaymentStatus   PaymentStatus     `json:"paymentStatus"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	DiscountAmount  decimal.Decimal   `json:"discountAmount"`
	FinalAmount     decimal.Decimal   `json:"finalAmount"`
	ShippingName    string            `json:"shippingName"`
	ShippingPhone   string            `json:"shippingPhone"`
	ShippingAddress string            `json:"shippingAddress"`
	OrderedAt       time.Time         `json:"orderDate"`
	Items           []OrderItemDetail `json:"items"`
}

// OrderSummary is the list view of an order.
type OrderSummary struct {
	OrderNumber string            `json:"orderNumber"`
	Status      OrderStatus       `json:"status"`
	FinalAmount decimal.Decimal   `json:"finalAmount"`
	OrderedAt   time.Time         `json:"orderDate"`
	Items       []OrderItemDetail `json:"items"`
}

// Detail materialises the order for a response.
func (o *Order) Detail() *OrderDetail {
	return &OrderDetail{
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		TotalAmount:     o.TotalAmount,
		DiscountAmount:  o.DiscountAmount,
		FinalAmount:     o.FinalAmount,
		ShippingName:    o.Shipping.Name,
		ShippingPhone:   o.Shipping.Phone,
		ShippingAddress: o.Shipping.Address,
		OrderedAt:       o.OrderedAt,
		Items:           o.itemDetails(),
	}
}

// Summary returns the list view of the order.
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		FinalAmount: o.FinalAmount,
		OrderedAt:   o.OrderedAt,
		Items:       o.itemDetails(),
	}
}

func (o *Order) itemDetails() []OrderItemDetail {
	details := make([]OrderItemDetail, len(o.Items))
	for i, item := range o.Items {
		details[i] = OrderItemDetail{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.UnitPrice,
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal,
		}
	}
	return details
}
