package service

import (
	"context"
	"errors"

	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/pkg/logger"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrProductRequired  = errors.New("product id is required")
)

type CartService interface {
	GetUserCart(ctx context.Context, userID string) ([]model.CartLine, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID string) error
}

type cartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

func (s *cartService) GetUserCart(ctx context.Context, userID string) ([]model.CartLine, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(lines),
	})
	return lines, nil
}

// AddToCart increments the quantity of an existing line or creates it.
func (s *cartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	if productID == "" {
		return nil, ErrProductRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	item, err := s.cartRepo.Upsert(ctx, userID, productID, quantity)
	if err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})
	return item, nil
}

// UpdateQuantity sets the line to quantity. Zero removes the line and succeeds
// whether or not it existed.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if productID == "" {
		return ErrProductRequired
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity == 0 {
		if _, err := s.cartRepo.Delete(ctx, userID, productID); err != nil {
			logger.Error("Failed to remove cart item", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return err
		}
		return nil
	}

	affected, err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	if affected == 0 {
		logger.Warn("Cart item not found for update", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return ErrCartItemNotFound
	}
	return nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return ErrProductRequired
	}

	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	affected, err := s.cartRepo.Delete(ctx, userID, productID)
	if err != nil {
		logger.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	if affected == 0 {
		logger.Warn("Cart item not found for removal", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return ErrCartItemNotFound
	}
	return nil
}
