package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func orderRequest(items ...model.OrderItemRequest) *model.CreateOrderRequest {
	return &model.CreateOrderRequest{
		ShippingInfo: model.ShippingInfo{
			Name:    "Kim Minji",
			Phone:   "010-1234-5678",
			Address: "1 Jungang-ro, Jeju",
		},
		PaymentMethod: model.PaymentCard,
		Items:         items,
	}
}

func TestOrderFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := SetupTestEnv(t)
	ctx := context.Background()
	buyer := model.Principal{UserID: 42, Role: model.RoleUser}

	t.Run("order snapshots sale price, reserves stock and trims the cart", func(t *testing.T) {
		ids := env.Reset(t)
		jeju, busan := ids["TOUR-JEJU"], ids["STAY-BUSAN"]

		_, err := env.Carts.AddItem(ctx, buyer, &model.AddCartItemRequest{ProductID: jeju, Quantity: 2})
		require.NoError(t, err)
		_, err = env.Carts.AddItem(ctx, buyer, &model.AddCartItemRequest{ProductID: busan, Quantity: 1})
		require.NoError(t, err)

		order, err := env.Orders.CreateOrder(ctx, buyer, orderRequest(model.OrderItemRequest{ProductID: jeju, Quantity: 2}))
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(300000).Equal(order.TotalAmount), "total %s", order.TotalAmount)
		assert.True(t, decimal.NewFromInt(60000).Equal(order.DiscountAmount), "discount %s", order.DiscountAmount)
		assert.True(t, decimal.NewFromInt(240000).Equal(order.FinalAmount), "final %s", order.FinalAmount)
		assert.Equal(t, model.StatusPlaced, order.Status)
		assert.Equal(t, model.PaymentPending, order.PaymentStatus)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Jeju Island Tour", order.Items[0].ProductName)
		assert.True(t, decimal.NewFromInt(120000).Equal(order.Items[0].ProductPrice))

		assert.Equal(t, 48, env.Stock(t, jeju))

		cart, err := env.Carts.GetCart(ctx, buyer)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, busan, cart.Items[0].ProductID)
	})

	t.Run("insufficient stock leaves no trace", func(t *testing.T) {
		ids := env.Reset(t)
		jeju, busan := ids["TOUR-JEJU"], ids["STAY-BUSAN"]

		_, err := env.Orders.CreateOrder(ctx, buyer, orderRequest(
			model.OrderItemRequest{ProductID: jeju, Quantity: 1},
			model.OrderItemRequest{ProductID: busan, Quantity: 4},
		))

		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInsufficientStock))
		assert.Equal(t, 50, env.Stock(t, jeju), "earlier reservation must roll back")
		assert.Equal(t, 3, env.Stock(t, busan))
		assert.Zero(t, env.CountOrders(t))
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		ids := env.Reset(t)

		_, err := env.Orders.CreateOrder(ctx, buyer, orderRequest(model.OrderItemRequest{ProductID: ids["TOUR-OLD"], Quantity: 1}))

		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		assert.Equal(t, 5, env.Stock(t, ids["TOUR-OLD"]))
	})

	t.Run("concurrent orders never oversell", func(t *testing.T) {
		ids := env.Reset(t)
		limited := ids["TOUR-LIMITED"]

		results := make([]error, 2)
		var g errgroup.Group
		for i := range results {
			g.Go(func() error {
				p := model.Principal{UserID: int64(100 + i), Role: model.RoleUser}
				_, results[i] = env.Orders.CreateOrder(ctx, p, orderRequest(model.OrderItemRequest{ProductID: limited, Quantity: 6}))
				return nil
			})
		}
		require.NoError(t, g.Wait())

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			assert.Equal(t, model.KindInsufficientStock, model.KindOf(err), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 4, env.Stock(t, limited))
		assert.Equal(t, 1, env.CountOrders(t))
	})

	t.Run("cancel restores stock exactly once", func(t *testing.T) {
		ids := env.Reset(t)
		busan := ids["STAY-BUSAN"]

		order, err := env.Orders.CreateOrder(ctx, buyer, orderRequest(model.OrderItemRequest{ProductID: busan, Quantity: 3}))
		require.NoError(t, err)
		require.Zero(t, env.Stock(t, busan))

		canceled := model.StatusCanceled
		require.NoError(t, env.Orders.UpdateOrderStatus(ctx, order.OrderNumber, &model.UpdateOrderStatusRequest{Status: &canceled}))
		assert.Equal(t, 3, env.Stock(t, busan))

		require.NoError(t, env.Orders.UpdateOrderStatus(ctx, order.OrderNumber, &model.UpdateOrderStatusRequest{Status: &canceled}))
		assert.Equal(t, 3, env.Stock(t, busan))

		placed := model.StatusPlaced
		err = env.Orders.UpdateOrderStatus(ctx, order.OrderNumber, &model.UpdateOrderStatusRequest{Status: &placed})
		assert.True(t, errors.Is(err, model.NewValidationError(model.ErrCodeInvalidStatusTransition, "")))

		detail, err := env.Orders.GetOrderDetail(ctx, buyer, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCanceled, detail.Status)

		all, err := env.Orders.GetAllOrders(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("order lines keep the price paid after a catalog update", func(t *testing.T) {
		ids := env.Reset(t)
		jeju := ids["TOUR-JEJU"]

		order, err := env.Orders.CreateOrder(ctx, buyer, orderRequest(model.OrderItemRequest{ProductID: jeju, Quantity: 1}))
		require.NoError(t, err)

		_, err = env.Products.Upsert(ctx, []model.Product{{
			SKU: "TOUR-JEJU", Name: "Jeju Island Tour (2027)", Category: "tour",
			Price: decimal.NewFromInt(200000), StockQuantity: 49, Status: model.ProductActive,
		}})
		require.NoError(t, err)

		detail, err := env.Orders.GetOrderDetail(ctx, buyer, order.OrderNumber)
		require.NoError(t, err)
		require.Len(t, detail.Items, 1)
		assert.Equal(t, "Jeju Island Tour", detail.Items[0].ProductName)
		assert.True(t, decimal.NewFromInt(120000).Equal(detail.Items[0].ProductPrice))
		assert.True(t, decimal.NewFromInt(120000).Equal(detail.FinalAmount))
	})

	t.Run("orders are private to their buyer", func(t *testing.T) {
		ids := env.Reset(t)

		order, err := env.Orders.CreateOrder(ctx, buyer, orderRequest(model.OrderItemRequest{ProductID: ids["TOUR-JEJU"], Quantity: 1}))
		require.NoError(t, err)

		_, err = env.Orders.GetOrderDetail(ctx, model.Principal{UserID: 7, Role: model.RoleUser}, order.OrderNumber)
		assert.True(t, errors.Is(err, model.ErrNotOrderOwner))

		mine, err := env.Orders.GetMyOrders(ctx, buyer)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		theirs, err := env.Orders.GetMyOrders(ctx, model.Principal{UserID: 7, Role: model.RoleUser})
		require.NoError(t, err)
		assert.Empty(t, theirs)
	})
}
