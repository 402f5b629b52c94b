package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound      = errors.New("address not found")
	ErrAddressFieldsMissing = errors.New("all address fields are required")
)

type AddressService interface {
	GetUserAddresses(ctx context.Context, userID string) ([]model.Address, error)
	CreateAddress(ctx context.Context, userID string, fields model.AddressFields, isDefault bool) (*model.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, fields model.AddressFields, isDefault bool) (*model.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
	SetDefaultAddress(ctx context.Context, userID, addressID string) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		addressRepo: addressRepo,
	}
}

func complete(f model.AddressFields) bool {
	for _, v := range []string{f.FullName, f.PhoneNumber, f.Pincode, f.Area, f.City, f.State} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func (s *addressService) GetUserAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	logger.Debug("Fetching user addresses", map[string]interface{}{
		"user_id": userID,
	})

	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User addresses fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

func (s *addressService) CreateAddress(
	ctx context.Context,
	userID string,
	fields model.AddressFields,
	isDefault bool,
) (*model.Address, error) {
	if !complete(fields) {
		return nil, ErrAddressFieldsMissing
	}

	logger.Info("Creating address", map[string]interface{}{
		"user_id":    userID,
		"city":       fields.City,
		"is_default": isDefault,
	})

	address := &model.Address{
		UserID:      userID,
		FullName:    fields.FullName,
		PhoneNumber: fields.PhoneNumber,
		Pincode:     fields.Pincode,
		Area:        fields.Area,
		City:        fields.City,
		State:       fields.State,
		IsDefault:   isDefault,
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})
	return address, nil
}

func (s *addressService) UpdateAddress(
	ctx context.Context,
	userID, addressID string,
	fields model.AddressFields,
	isDefault bool,
) (*model.Address, error) {
	if !complete(fields) {
		return nil, ErrAddressFieldsMissing
	}

	logger.Info("Updating address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
		"is_default": isDefault,
	})

	address, err := s.addressRepo.Update(ctx, userID, addressID, fields, isDefault)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Address not found for update", map[string]interface{}{
				"user_id":    userID,
				"address_id": addressID,
			})
			return nil, ErrAddressNotFound
		}
		logger.Error("Failed to update address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return nil, err
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return address, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	logger.Info("Deleting address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	affected, err := s.addressRepo.Delete(ctx, userID, addressID)
	if err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}
	if affected == 0 {
		logger.Warn("Address not found for deletion", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return ErrAddressNotFound
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	logger.Info("Setting default address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	if err := s.addressRepo.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Address not found for default", map[string]interface{}{
				"user_id":    userID,
				"address_id": addressID,
			})
			return ErrAddressNotFound
		}
		logger.Error("Failed to set default address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}
	return nil
}
