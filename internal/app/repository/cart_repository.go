package repository

import (
	"context"

	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.CartLine, error)
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.CartItem, error)
	Upsert(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (int64, error)
	Delete(ctx context.Context, userID, productID string) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID string) ([]model.CartLine, error) {
	logger.Debug("Finding cart lines by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	lines := make([]model.CartLine, 0)
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.id, cart_items.quantity, cart_items.product_id, products.name, products.price, products.main_image").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at ASC").
		Scan(&lines).Error
	if err != nil {
		logger.Error("Failed to find cart lines by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart lines found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(lines),
	})
	return lines, nil
}

func (r *cartRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		logLookupFailure("Failed to find cart item by user and product in database", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	return &item, nil
}

// Upsert adds quantity to the user's row for productID, creating the row when
// none exists. The increment is done in SQL so repeated adds accumulate.
func (r *cartRepository) Upsert(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	logger.Debug("Upserting cart item in database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	var item model.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			item = model.CartItem{
				UserID:    userID,
				ProductID: productID,
				Quantity:  quantity,
			}
			return tx.Create(&item).Error
		}

		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	})
	if err != nil {
		logger.Error("Failed to upsert cart item in database", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Debug("Cart item upserted in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})
	return &item, nil
}

// SetQuantity overwrites the quantity and reports how many rows matched.
func (r *cartRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) (int64, error) {
	logger.Debug("Setting cart item quantity in database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	res := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		logger.Error("Failed to set cart item quantity in database", res.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Delete removes the user's row for productID and reports how many rows went.
func (r *cartRepository) Delete(ctx context.Context, userID, productID string) (int64, error) {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		logger.Error("Failed to delete cart item from database", res.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return 0, res.Error
	}

	logger.Debug("Cart item deleted from database", map[string]interface{}{
		"user_id":       userID,
		"product_id":    productID,
		"rows_affected": res.RowsAffected,
	})
	return res.RowsAffected, nil
}
