package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/config"
	"github.com/ikkim/homecart-backend/internal/app/controller"
	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/authz"
	"github.com/ikkim/homecart-backend/internal/db"
	"github.com/ikkim/homecart-backend/internal/metrics"
	"github.com/ikkim/homecart-backend/internal/middleware"
	"gorm.io/gorm"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	cartController    *controller.CartController
	addressController *controller.AddressController
	authMiddleware    *middleware.AuthMiddleware
	conn              *gorm.DB
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	addressController *controller.AddressController,
	authMiddleware *middleware.AuthMiddleware,
	conn *gorm.DB,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		cartController:    cartController,
		addressController: addressController,
		authMiddleware:    authMiddleware,
		conn:              conn,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.GET("/google/login", r.authController.GoogleLogin)
			auth.GET("/google/callback", r.authController.GoogleCallback)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/:id", r.productController.GetProductByID)
			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleAdmin),
				r.productController.CreateProduct,
			)
		}

		// Per-user resources. The guard runs before any handler reads the body.
		users := v1.Group("/users/:"+middleware.UserIDParam, r.authMiddleware.ResolveSession())
		{
			cart := users.Group("/cart", middleware.Guard("cart", authz.CartAccess))
			{
				cart.GET("", r.cartController.GetCart)
				cart.POST("", r.cartController.AddToCart)
				cart.PUT("", r.cartController.UpdateCartItem)
				cart.DELETE("", r.cartController.RemoveFromCart)
			}

			addresses := users.Group("/addresses", middleware.Guard("address", authz.AddressAccess))
			{
				addresses.GET("", r.addressController.GetAddresses)
				addresses.POST("", r.addressController.CreateAddress)
				addresses.PUT("", r.addressController.UpdateAddress)
				addresses.DELETE("", r.addressController.DeleteAddress)
				addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
			}
		}
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, r.conn); err != nil {
		middleware.GetLoggerFromContext(c).Error("Health check failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "ok",
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
