package model

import "strings"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPlaced           OrderStatus = "PLACED"
	StatusPaymentCompleted OrderStatus = "PAYMENT_COMPLETED"
	StatusPreparing        OrderStatus = "PREPARING"
	StatusShipped          OrderStatus = "SHIPPED"
	StatusDelivered        OrderStatus = "DELIVERED"
	StatusCanceled         OrderStatus = "CANCELED"
	StatusReturned         OrderStatus = "RETURNED"
)

// orderStatusTransitions lists the states reachable from each state.
// CANCELED and RETURNED have no exits.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:           {StatusPaymentCompleted, StatusCanceled, StatusReturned},
	StatusPaymentCompleted: {StatusPreparing, StatusCanceled, StatusReturned},
	StatusPreparing:        {StatusShipped, StatusCanceled, StatusReturned},
	StatusShipped:          {StatusDelivered, StatusCanceled, StatusReturned},
	StatusDelivered:        {StatusCanceled, StatusReturned},
	StatusCanceled:         {},
	StatusReturned:         {},
}

// ParseOrderStatus converts a case-insensitive name into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := orderStatusTransitions[st]
	return st, ok
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed from s.
func (s OrderStatus) IsTerminal() bool {
	next, ok := orderStatusTransitions[s]
	return ok && len(next) == 0
}

// RestoresStock reports whether entering s gives the ordered quantities back
// to inventory.
func (s OrderStatus) RestoresStock() bool {
	return s == StatusCanceled || s == StatusReturned
}

// CanTransitionTo reports whether an order in state s may move to next.
// Staying in the same state is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus is the recorded state of the payment for an order. It is
// never processed by this service.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

var paymentStatusTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentFailed:    {PaymentPending, PaymentCompleted},
	PaymentCompleted: {PaymentRefunded},
	PaymentRefunded:  {},
}

// ParsePaymentStatus converts a case-insensitive name into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := paymentStatusTransitions[st]
	return st, ok
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusTransitions[s]
	return ok
}

// CanTransitionTo reports whether a payment in state s may move to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range paymentStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod is how the buyer intends to pay.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "CARD"
	PaymentKakaoPay     PaymentMethod = "KAKAO_PAY"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentKakaoPay, PaymentBankTransfer:
		return true
	}
	return false
}
