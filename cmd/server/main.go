package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/homecart-backend/config"
	"github.com/ikkim/homecart-backend/internal/app/controller"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/internal/app/service"
	"github.com/ikkim/homecart-backend/internal/db"
	"github.com/ikkim/homecart-backend/internal/middleware"
	"github.com/ikkim/homecart-backend/internal/router"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"github.com/ikkim/homecart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting HomeCart Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(db.GetDB(), cfg); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Session revocation list
	var sessions service.SessionRevoker = redis.NopSessionStore{}
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		sessions = redis.NewSessionStore(redis.GetClient())
	} else {
		logger.Warn("Redis disabled; logout will not revoke issued tokens")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		sessions,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	oauthService := service.NewGoogleOAuthService(cfg.OAuth.Google)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo)
	addressService := service.NewAddressService(addressRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService, oauthService, controller.CookieSettings{
		Secure:    cfg.Server.Environment == "production",
		AccessTTL: cfg.JWT.AccessTokenExpiry,
	})
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	addressController := controller.NewAddressController(addressService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo, sessions)

	r := router.NewRouter(
		authController,
		productController,
		cartController,
		addressController,
		authMiddleware,
		db.GetDB(),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
		return
	}

	logger.Info("Server stopped successfully")
}
