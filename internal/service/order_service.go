package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/database"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/events"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/inventory"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/ordernumber"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/pricing"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	orderNumberConstraint = "orders_order_number_key"

	defaultPublishTimeout = 3 * time.Second
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	ledger      inventory.Ledger
	cart        CartReconciler
	numbers     ordernumber.Generator
	publisher   events.Publisher
	txTimeout   time.Duration
	publishWait time.Duration
	retry       RetryConfig
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ledger inventory.Ledger,
	cart CartReconciler,
	numbers ordernumber.Generator,
	publisher events.Publisher,
	cfg config.OrderConfig,
	logger zerolog.Logger,
) OrderService {
	publishWait := cfg.PublishTimeout
	if publishWait <= 0 {
		publishWait = defaultPublishTimeout
	}

	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledger:      ledger,
		cart:        cart,
		numbers:     numbers,
		publisher:   publisher,
		txTimeout:   cfg.TxTimeout,
		publishWait: publishWait,
		retry:       NewRetryConfig(cfg),
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder places an order for buyer. The transaction is retried when it
// loses a lock conflict or draws an order number that is already taken.
func (s *orderService) CreateOrder(ctx context.Context, buyer model.Principal, req *model.CreateOrderRequest) (*model.OrderDetail, error) {
	lines, err := s.validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	order, err := retryWithBackoff(ctx, s.retry, isRetryablePlacement, func(ctx context.Context) (*model.Order, error) {
		return s.placeOrder(ctx, buyer, req, lines)
	})
	if err != nil {
		if model.KindOf(err) != model.KindUnknown {
			s.logger.Warn().
				Int64("user_id", buyer.UserID).
				Err(err).
				Msg("order rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", buyer.UserID).Msg("failed to place order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publish(ctx, events.NewOrderPlaced(order))

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Int64("user_id", buyer.UserID).
		Int("item_count", len(order.Items)).
		Str("final_amount", order.FinalAmount.StringFixed(pricing.Scale)).
		Msg("order created successfully")

	return order.Detail(), nil
}

// placeOrder runs one attempt of the placement transaction. Every write is
// discarded by the deferred rollback when err is set.
func (s *orderService) placeOrder(ctx context.Context, buyer model.Principal, req *model.CreateOrderRequest, lines []model.OrderItemRequest) (order *model.Order, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	productIDs := make([]int64, len(lines))
	for i, line := range lines {
		productIDs[i] = line.ProductID
	}

	products, err := s.productRepo.FindByIDs(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range productIDs {
		product, ok := byID[id]
		if !ok {
			return nil, model.NewValidationError(model.ErrCodeProductNotFound, "Product %d does not exist", id)
		}
		if !product.IsActive() {
			return nil, model.NewValidationError(model.ErrCodeProductInactive, "Product %d is not on sale", id)
		}
	}

	// lines are sorted by product id, which fixes the lock order.
	var totals pricing.Totals
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		if err := s.ledger.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}

		product := byID[line.ProductID]
		effective := pricing.EffectivePrice(product)
		amount := pricing.Line(product.Price, effective, line.Quantity)
		totals.Add(amount)

		items = append(items, model.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   effective,
			Quantity:    line.Quantity,
			Subtotal:    amount.Final,
		})
	}

	order = model.NewOrder(model.OrderDraft{
		OrderNumber:    s.numbers.Next(),
		UserID:         buyer.UserID,
		PaymentMethod:  req.PaymentMethod,
		Shipping:       trimShipping(req.ShippingInfo),
		TotalAmount:    totals.TotalAmount(),
		DiscountAmount: totals.DiscountAmount(),
		FinalAmount:    totals.FinalAmount(),
		OrderedAt:      s.now().UTC(),
	}, items)

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return nil, fmt.Errorf("failed to insert order items: %w", err)
	}

	removed, err := s.cart.Reconcile(ctx, tx, buyer.UserID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	s.logger.Debug().
		Str("order_number", order.OrderNumber).
		Int64("cart_rows_removed", removed).
		Msg("order transaction committed")

	return order, nil
}

// GetOrderDetail returns an order owned by buyer.
func (s *orderService) GetOrderDetail(ctx context.Context, buyer model.Principal, orderNumber string) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != buyer.UserID {
		s.logger.Warn().
			Str("order_number", orderNumber).
			Int64("user_id", buyer.UserID).
			Msg("order requested by non-owner")
		return nil, model.ErrNotOrderOwner
	}

	return order.Detail(), nil
}

// GetMyOrders returns the buyer's orders, newest first.
func (s *orderService) GetMyOrders(ctx context.Context, buyer model.Principal) ([]model.OrderSummary, error) {
	orders, err := s.orderRepo.ListByUser(ctx, buyer.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", buyer.UserID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return summaries(orders), nil
}

// GetAllOrders returns every order, newest first.
func (s *orderService) GetAllOrders(ctx context.Context) ([]model.OrderSummary, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list all orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return summaries(orders), nil
}

type statusChange struct {
	order       *model.Order
	prevStatus  model.OrderStatus
	prevPayment model.PaymentStatus
}

// UpdateOrderStatus applies an administrative status change. Entering
// CANCELED or RETURNED puts every line's quantity back into stock.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderNumber string, req *model.UpdateOrderStatusRequest) error {
	if req == nil || (req.Status == nil && req.PaymentStatus == nil) {
		return model.ErrNoStatusChange
	}
	if req.Status != nil && !req.Status.Valid() {
		return model.NewValidationError(model.ErrCodeInvalidStatus, "Unknown order status %q", *req.Status)
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return model.NewValidationError(model.ErrCodeInvalidStatus, "Unknown payment status %q", *req.PaymentStatus)
	}

	change, err := retryWithBackoff(ctx, s.retry, database.IsRetryable, func(ctx context.Context) (*statusChange, error) {
		return s.applyStatusChange(ctx, orderNumber, req)
	})
	if err != nil {
		if model.KindOf(err) != model.KindUnknown {
			s.logger.Warn().Str("order_number", orderNumber).Err(err).Msg("status change rejected")
			return err
		}
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	s.publish(ctx, events.NewStatusChanged(change.order, change.prevStatus, change.prevPayment))

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("status", string(change.order.Status)).
		Str("payment_status", string(change.order.PaymentStatus)).
		Msg("order status updated")

	return nil
}

// applyStatusChange runs one attempt of the status update transaction. The
// order row stays locked until commit, so concurrent cancellations of the
// same order observe each other and stock is restored once.
func (s *orderService) applyStatusChange(ctx context.Context, orderNumber string, req *model.UpdateOrderStatusRequest) (change *statusChange, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	order, err := s.orderRepo.LockByOrderNumber(ctx, tx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	change = &statusChange{
		order:       order,
		prevStatus:  order.Status,
		prevPayment: order.PaymentStatus,
	}

	if next := req.Status; next != nil && *next != order.Status {
		if !order.Status.CanTransitionTo(*next) {
			return nil, model.NewValidationError(model.ErrCodeInvalidStatusTransition,
				"Cannot change order status from %s to %s", order.Status, *next)
		}
		if next.RestoresStock() {
			if err := s.restoreStock(ctx, tx, order); err != nil {
				return nil, err
			}
		}
		order.Status = *next
	}

	if next := req.PaymentStatus; next != nil && *next != order.PaymentStatus {
		if !order.PaymentStatus.CanTransitionTo(*next) {
			return nil, model.NewValidationError(model.ErrCodeInvalidStatusTransition,
				"Cannot change payment status from %s to %s", order.PaymentStatus, *next)
		}
		order.PaymentStatus = *next
	}

	order.UpdatedAt = s.now().UTC()
	if err := s.orderRepo.UpdateStatus(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to write order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	return change, nil
}

// restoreStock returns every line of order to inventory. Products that have
// since been deleted are skipped.
func (s *orderService) restoreStock(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for _, item := range order.Items {
		err := s.ledger.Restore(ctx, tx, item.ProductID, item.Quantity)
		if model.KindOf(err) == model.KindNotFound {
			s.logger.Warn().
				Str("order_number", order.OrderNumber).
				Int64("product_id", item.ProductID).
				Msg("product no longer exists, stock not restored")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// publish runs after commit. It outlives a cancelled request but never waits
// longer than publishWait on the broker.
func (s *orderService) publish(ctx context.Context, event events.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishWait)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("type", string(event.Type)).
			Str("order_number", event.OrderNumber).
			Msg("failed to publish order event")
	}
}

func (s *orderService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// validateOrderRequest checks the request and returns its items merged by
// product id and sorted by product id.
func (s *orderService) validateOrderRequest(req *model.CreateOrderRequest) ([]model.OrderItemRequest, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, model.ErrEmptyOrder
	}

	shipping := trimShipping(req.ShippingInfo)
	if shipping.Name == "" || shipping.Phone == "" || shipping.Address == "" {
		return nil, model.ErrMissingShipping
	}

	if !req.PaymentMethod.Valid() {
		return nil, model.NewValidationError(model.ErrCodeInvalidPaymentMethod, "Unknown payment method %q", req.PaymentMethod)
	}

	quantities := make(map[int64]int, len(req.Items))
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return nil, model.NewValidationError(model.ErrCodeValidationFailed, "Item %d: product id is required", i)
		}
		if item.Quantity <= 0 || item.Quantity > model.MaxLineQuantity-quantities[item.ProductID] {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
		quantities[item.ProductID] += item.Quantity
	}

	lines := make([]model.OrderItemRequest, 0, len(quantities))
	for id, qty := range quantities {
		lines = append(lines, model.OrderItemRequest{ProductID: id, Quantity: qty})
	}
	slices.SortFunc(lines, func(a, b model.OrderItemRequest) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	return lines, nil
}

func isRetryablePlacement(err error) bool {
	return database.IsRetryable(err) || database.IsUniqueViolation(err, orderNumberConstraint)
}

func trimShipping(s model.ShippingInfo) model.ShippingInfo {
	return model.ShippingInfo{
		Name:    strings.TrimSpace(s.Name),
		Phone:   strings.TrimSpace(s.Phone),
		Address: strings.TrimSpace(s.Address),
	}
}

func summaries(orders []model.Order) []model.OrderSummary {
	out := make([]model.OrderSummary, len(orders))
	for i := range orders {
		out[i] = orders[i].Summary()
	}
	return out
}
