// Package events publishes order lifecycle events. Publishing happens after
// the order transaction commits and never changes the outcome of the
// operation that triggered it.
package events

import (
	"context"
	"time"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/shopspring/decimal"
)

// Type names an order event.
type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
)

// OrderEvent is the payload written to the order topic.
type OrderEvent struct {
	Type                  Type                    `json:"type"`
	OrderNumber           string                  `json:"orderNumber"`
	UserID                int64                   `json:"userId"`
	Status                model.OrderStatus       `json:"status"`
	PaymentStatus         model.PaymentStatus     `json:"paymentStatus"`
	PreviousStatus        model.OrderStatus       `json:"previousStatus,omitempty"`
	PreviousPaymentStatus model.PaymentStatus     `json:"previousPaymentStatus,omitempty"`
	FinalAmount           decimal.Decimal         `json:"finalAmount"`
	Items                 []model.OrderItemDetail `json:"items,omitempty"`
	OccurredAt            time.Time               `json:"occurredAt"`
}

// Publisher delivers order events.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close()
}

// NewOrderPlaced builds the event for a freshly committed order.
func NewOrderPlaced(o *model.Order) OrderEvent {
	return OrderEvent{
		Type:          OrderPlaced,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		FinalAmount:   o.FinalAmount,
		Items:         o.Detail().Items,
		OccurredAt:    o.OrderedAt,
	}
}

// NewStatusChanged builds the event for a committed status update.
func NewStatusChanged(o *model.Order, prevStatus model.OrderStatus, prevPayment model.PaymentStatus) OrderEvent {
	return OrderEvent{
		Type:                  OrderStatusChanged,
		OrderNumber:           o.OrderNumber,
		UserID:                o.UserID,
		Status:                o.Status,
		PaymentStatus:         o.PaymentStatus,
		PreviousStatus:        prevStatus,
		PreviousPaymentStatus: prevPayment,
		FinalAmount:           o.FinalAmount,
		OccurredAt:            o.UpdatedAt,
	}
}

type nopPublisher struct{}

// NewNop returns a publisher that drops every event. Used when Kafka is disabled.
func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (nopPublisher) Close()                                    {}
