package service

import (
	"context"
	"fmt"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/pricing"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart returns the user's cart with effective prices and totals.
func (s *cartService) GetCart(ctx context.Context, user model.Principal) (*model.CartView, error) {
	items, err := s.cartRepo.FindByUser(ctx, user.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return buildCartView(items), nil
}

// AddItem adds quantity units of an active product to the cart, merging
// with a line that is already there.
func (s *cartService) AddItem(ctx context.Context, user model.Principal, req *model.AddCartItemRequest) (*model.CartView, error) {
	if req == nil || req.Quantity <= 0 || req.Quantity > model.MaxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.activeProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.Get(ctx, user.UserID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	quantity := req.Quantity
	if existing != nil {
		if existing.Quantity > model.MaxLineQuantity-quantity {
			return nil, model.ErrInvalidQuantity
		}
		quantity += existing.Quantity
	}
	if quantity > product.StockQuantity {
		s.logger.Warn().
			Int64("user_id", user.UserID).
			Int64("product_id", product.ID).
			Int("available", product.StockQuantity).
			Int("requested", quantity).
			Msg("cart quantity exceeds stock")
		return nil, model.NewInsufficientStockError(product.ID, product.StockQuantity, quantity)
	}

	if err := s.cartRepo.Save(ctx, user.UserID, product.ID, quantity); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to save cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return s.GetCart(ctx, user)
}

// UpdateItem sets the quantity of a line already in the cart. A quantity of
// zero or less removes the line.
func (s *cartService) UpdateItem(ctx context.Context, user model.Principal, productID int64, req *model.UpdateCartItemRequest) (*model.CartView, error) {
	if req == nil {
		return nil, model.ErrInvalidQuantity
	}

	existing, err := s.cartRepo.Get(ctx, user.UserID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if existing == nil {
		return nil, model.ErrCartItemNotFound
	}

	if req.Quantity <= 0 {
		if err := s.cartRepo.Delete(ctx, user.UserID, productID); err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.GetCart(ctx, user)
	}

	if req.Quantity > model.MaxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > product.StockQuantity {
		return nil, model.NewInsufficientStockError(product.ID, product.StockQuantity, req.Quantity)
	}

	if err := s.cartRepo.Save(ctx, user.UserID, productID, req.Quantity); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to save cart item")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(ctx, user)
}

// RemoveItem deletes one line. Removing a product that is not in the cart
// succeeds.
func (s *cartService) RemoveItem(ctx context.Context, user model.Principal, productID int64) error {
	if err := s.cartRepo.Delete(ctx, user.UserID, productID); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Int64("product_id", productID).Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// ClearCart deletes every line of the user's cart.
func (s *cartService) ClearCart(ctx context.Context, user model.Principal) error {
	n, err := s.cartRepo.DeleteAll(ctx, user.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Int64("user_id", user.UserID).Int64("removed", n).Msg("cart cleared")
	return nil
}

func (s *cartService) activeProduct(ctx context.Context, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(productID)
	}
	if !product.IsActive() {
		return nil, model.NewValidationError(model.ErrCodeProductInactive, "Product %d is not on sale", productID)
	}
	return product, nil
}

func buildCartView(items []model.CartItem) *model.CartView {
	view := &model.CartView{
		Items:       make([]model.CartLine, 0, len(items)),
		TotalAmount: decimal.Zero,
	}

	var totals pricing.Totals
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		p := item.Product
		effective := pricing.EffectivePrice(p)
		amount := pricing.Line(p.Price, effective, item.Quantity)
		totals.Add(amount)

		line := model.CartLine{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Price:          p.Price,
			EffectivePrice: effective,
			Quantity:       item.Quantity,
			Subtotal:       amount.Final,
			StockQuantity:  p.StockQuantity,
			Status:         p.Status,
		}
		if p.SalePrice.Valid {
			sale := p.SalePrice.Decimal
			line.SalePrice = &sale
		}

		view.Items = append(view.Items, line)
		view.TotalQuantity += item.Quantity
	}
	view.TotalAmount = totals.FinalAmount()

	return view
}

// cartReconciler implements CartReconciler on top of the cart store.
type cartReconciler struct {
	cartRepo repository.CartRepository
	logger   zerolog.Logger
}

// NewCartReconciler creates the reconciler used by order placement.
func NewCartReconciler(cartRepo repository.CartRepository, logger zerolog.Logger) CartReconciler {
	return &cartReconciler{
		cartRepo: cartRepo,
		logger:   logger.With().Str("component", "cart_reconciler").Logger(),
	}
}

func (r *cartReconciler) Reconcile(ctx context.Context, tx pgx.Tx, userID int64, productIDs []int64) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	n, err := r.cartRepo.DeleteByProductIDs(ctx, tx, userID, productIDs)
	if err != nil {
		return 0, err
	}

	r.logger.Debug().
		Int64("user_id", userID).
		Int("ordered_products", len(productIDs)).
		Int64("removed", n).
		Msg("cart reconciled")

	return n, nil
}
