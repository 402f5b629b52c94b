package repository

import (
	"context"

	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"gorm.io/gorm"
)

type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Address, error)
	Create(ctx context.Context, address *model.Address) error
	Update(ctx context.Context, userID, addressID string, fields model.AddressFields, isDefault bool) (*model.Address, error)
	Delete(ctx context.Context, userID, addressID string) (int64, error)
	SetDefault(ctx context.Context, userID, addressID string) error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	logger.Debug("Finding addresses by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	addresses := make([]model.Address, 0)
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		logger.Error("Failed to find addresses by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Addresses found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

// Create inserts the address. When it is the new default, every other default
// of the user is cleared in the same transaction.
func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	logger.Debug("Creating address in database", map[string]interface{}{
		"user_id":    address.UserID,
		"is_default": address.IsDefault,
	})

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin transaction for creating address", tx.Error, map[string]interface{}{
			"user_id": address.UserID,
		})
		return tx.Error
	}

	if address.IsDefault {
		if err := clearDefaults(tx, address.UserID, ""); err != nil {
			tx.Rollback()
			logger.Error("Failed to unset default addresses", err, map[string]interface{}{
				"user_id": address.UserID,
			})
			return err
		}
	}

	if err := tx.Create(address).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create address in database", err, map[string]interface{}{
			"user_id": address.UserID,
		})
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit transaction for creating address", err, map[string]interface{}{
			"user_id": address.UserID,
		})
		return err
	}

	logger.Debug("Address created in database", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
	})
	return nil
}

// Update rewrites the address fields, scoped to the owner. It returns
// gorm.ErrRecordNotFound, with nothing changed, when no owned row matches.
func (r *addressRepository) Update(
	ctx context.Context,
	userID, addressID string,
	fields model.AddressFields,
	isDefault bool,
) (*model.Address, error) {
	logger.Debug("Updating address in database", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
		"is_default": isDefault,
	})

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin transaction for updating address", tx.Error, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, tx.Error
	}

	if isDefault {
		if err := clearDefaults(tx, userID, addressID); err != nil {
			tx.Rollback()
			logger.Error("Failed to unset default addresses", err, map[string]interface{}{
				"user_id": userID,
			})
			return nil, err
		}
	}

	updates := fields.Columns()
	updates["is_default"] = isDefault

	res := tx.Model(&model.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		logger.Error("Failed to update address in database", res.Error, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		logger.Debug("No owned address matched update", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return nil, gorm.ErrRecordNotFound
	}

	var updated model.Address
	if err := tx.Where("id = ?", addressID).First(&updated).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to reload updated address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit transaction for updating address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, err
	}

	logger.Debug("Address updated in database", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return &updated, nil
}

func (r *addressRepository) Delete(ctx context.Context, userID, addressID string) (int64, error) {
	logger.Debug("Deleting address from database", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&model.Address{})
	if res.Error != nil {
		logger.Error("Failed to delete address from database", res.Error, map[string]interface{}{
			"address_id": addressID,
		})
		return 0, res.Error
	}

	logger.Debug("Address deleted from database", map[string]interface{}{
		"address_id":    addressID,
		"rows_affected": res.RowsAffected,
	})
	return res.RowsAffected, nil
}

// SetDefault makes addressID the user's only default. It returns
// gorm.ErrRecordNotFound, with nothing changed, when no owned row matches.
func (r *addressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	logger.Debug("Setting default address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin transaction for setting default address", tx.Error, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return tx.Error
	}

	if err := clearDefaults(tx, userID, addressID); err != nil {
		tx.Rollback()
		logger.Error("Failed to unset default addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	res := tx.Model(&model.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Update("is_default", true)
	if res.Error != nil {
		tx.Rollback()
		logger.Error("Failed to set address as default", res.Error, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return gorm.ErrRecordNotFound
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit transaction for setting default address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}

	logger.Debug("Default address set successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}

// clearDefaults unsets is_default on the user's addresses, sparing exceptID
// when it is non-empty.
func clearDefaults(tx *gorm.DB, userID, exceptID string) error {
	query := tx.Model(&model.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_default", false).Error
}
