package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/service"
	apperrors "github.com/ikkim/homecart-backend/internal/errors"
	"github.com/ikkim/homecart-backend/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type AddressFieldsRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Pincode     string `json:"pincode" binding:"required"`
	Area        string `json:"area" binding:"required"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state" binding:"required"`
}

func (r AddressFieldsRequest) fields() model.AddressFields {
	return model.AddressFields{
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Pincode:     r.Pincode,
		Area:        r.Area,
		City:        r.City,
		State:       r.State,
	}
}

type CreateAddressRequest struct {
	AddressFieldsRequest
	IsDefault bool `json:"isDefault"`
}

type UpdateAddressRequest struct {
	ID string `json:"id" binding:"required"`
	AddressFieldsRequest
	IsDefault bool `json:"isDefault"`
}

type DeleteAddressRequest struct {
	ID string `json:"id" binding:"required"`
}

// GetAddresses lists the user's addresses, default first
// GET /api/v1/users/:user_id/addresses
func (ctrl *AddressController) GetAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	addresses, err := ctrl.addressService.GetUserAddresses(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ServerError(c, err, "fetch addresses")
		return
	}

	c.JSON(http.StatusOK, addresses)
}

// CreateAddress adds an address
// POST /api/v1/users/:user_id/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create address request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	address, err := ctrl.addressService.CreateAddress(c.Request.Context(), userID, req.fields(), req.IsDefault)
	if err != nil {
		if errors.Is(err, service.ErrAddressFieldsMissing) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
			return
		}
		log.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ServerError(c, err, "create address")
		return
	}

	c.JSON(http.StatusCreated, address)
}

// UpdateAddress rewrites an owned address
// PUT /api/v1/users/:user_id/addresses
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update address request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	address, err := ctrl.addressService.UpdateAddress(c.Request.Context(), userID, req.ID, req.fields(), req.IsDefault)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
		case errors.Is(err, service.ErrAddressFieldsMissing):
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
		default:
			log.Error("Failed to update address", err, map[string]interface{}{
				"user_id":    userID,
				"address_id": req.ID,
			})
			apperrors.ServerError(c, err, "update address")
		}
		return
	}

	c.JSON(http.StatusOK, address)
}

// DeleteAddress removes an owned address
// DELETE /api/v1/users/:user_id/addresses
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	var req DeleteAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid delete address request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	if err := ctrl.addressService.DeleteAddress(c.Request.Context(), userID, req.ID); err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
			return
		}
		log.Error("Failed to delete address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": req.ID,
		})
		apperrors.ServerError(c, err, "delete address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted",
	})
}

// SetDefaultAddress makes one owned address the default
// PUT /api/v1/users/:user_id/addresses/:id/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)
	addressID := c.Param("id")

	if err := ctrl.addressService.SetDefaultAddress(c.Request.Context(), userID, addressID); err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
			return
		}
		log.Error("Failed to set default address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		apperrors.ServerError(c, err, "set default address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Default address updated",
	})
}
