package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrSKURequired is returned when a product is scanned without a SKU
var ErrSKURequired = shared.NewDomainError("INVALID_SKU", "Please enter a SKU")

// CartService manages the cashier's cart
type CartService struct {
	cartStore   sales.CartStore
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartStore sales.CartStore, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		cartStore:   cartStore,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetCart returns the user's cart
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// AddBySKU adds one unit of the product with the given SKU
func (s *CartService) AddBySKU(ctx context.Context, userID uuid.UUID, req AddToCartRequest) (*AddToCartResponse, error) {
	sku := catalog.NormalizeSKU(req.SKU)
	if sku == "" {
		return nil, ErrSKURequired
	}

	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.AddProduct(product); err != nil {
		return nil, err
	}
	if err := s.cartStore.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Debug("Product added to cart",
		zap.String("user_id", userID.String()),
		zap.String("sku", product.SKU),
		zap.Int64("cart_version", cart.Version))

	return &AddToCartResponse{
		Cart: ToCartResponse(cart),
		Product: CartProductResponse{
			ID:          product.ID,
			Name:        product.Name,
			SKU:         product.SKU,
			Stock:       product.Stock,
			StockStatus: product.StockStatus(),
		},
		Message: fmt.Sprintf("%s added to cart", product.Name),
	}, nil
}

// SetQuantity changes the quantity of a cart line. Zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, req SetQuantityRequest) (*CartResponse, error) {
	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.Line(productID) == nil {
		return nil, sales.ErrCartLineNotFound
	}

	if req.Quantity <= 0 {
		cart.Remove(productID)
	} else {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := cart.SetQuantity(product, req.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.cartStore.Save(ctx, cart); err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// Remove drops a product from the cart
func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error) {
	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID) {
		return nil, sales.ErrCartLineNotFound
	}
	if err := s.cartStore.Save(ctx, cart); err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	if err := s.cartStore.Save(ctx, cart); err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}
