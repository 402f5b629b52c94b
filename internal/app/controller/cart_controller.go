package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/internal/app/service"
	apperrors "github.com/ikkim/homecart-backend/internal/errors"
	"github.com/ikkim/homecart-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"omitempty,gt=0"`
}

type UpdateCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,gte=0"`
}

type RemoveFromCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// GetCart returns the user's cart lines
// GET /api/v1/users/:user_id/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	lines, err := ctrl.cartService.GetUserCart(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ServerError(c, err, "fetch cart")
		return
	}

	c.JSON(http.StatusOK, lines)
}

// AddToCart adds quantity (default 1) of a product
// POST /api/v1/users/:user_id/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := ctrl.cartService.AddToCart(c.Request.Context(), userID, req.ProductID, quantity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) || errors.Is(err, service.ErrProductRequired) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		apperrors.ServerError(c, err, "add to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"item":    item,
	})
}

// UpdateCartItem overwrites a line's quantity; zero removes it
// PUT /api/v1/users/:user_id/cart
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	err := ctrl.cartService.UpdateQuantity(c.Request.Context(), userID, req.ProductID, *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
		case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrProductRequired):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		default:
			log.Error("Failed to update cart item", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			apperrors.ServerError(c, err, "update cart")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
	})
}

// RemoveFromCart deletes a line
// DELETE /api/v1/users/:user_id/cart
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := c.Param(middleware.UserIDParam)

	var req RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid remove from cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	if err := ctrl.cartService.RemoveFromCart(c.Request.Context(), userID, req.ProductID); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		apperrors.ServerError(c, err, "remove from cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
	})
}
