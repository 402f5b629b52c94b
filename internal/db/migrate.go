package db

import (
	"errors"

	"github.com/ikkim/homecart-backend/config"
	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"github.com/ikkim/homecart-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.CartItem{},
		&model.Address{},
	}
}

// Migrate runs database migrations
func Migrate(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the bootstrap administrator and, outside production, a few
// demo products. Existing rows are left untouched.
func Seed(conn *gorm.DB, cfg *config.Config) error {
	logger.Info("Seeding initial data...")

	if err := seedAdmin(conn, &cfg.Admin); err != nil {
		logger.Error("Failed to seed admin", err)
		return err
	}

	if cfg.Server.Environment != "production" {
		if err := seedProducts(conn); err != nil {
			logger.Error("Failed to seed products", err)
			return err
		}
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedAdmin(conn *gorm.DB, cfg *config.AdminConfig) error {
	if cfg.Email == "" {
		logger.Debug("No bootstrap admin configured, skipping...")
		return nil
	}

	var existing model.User
	err := conn.Where("email = ?", cfg.Email).First(&existing).Error
	if err == nil {
		logger.Info("Admin already exists, skipping...", map[string]interface{}{
			"user_id": existing.ID,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        cfg.Email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
		Provider:     model.ProviderCredentials,
	}
	if err := conn.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Admin seeded successfully", map[string]interface{}{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	return nil
}

func seedProducts(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	products := []model.Product{
		{Name: "Cotton Kurta", Description: "Hand-block printed cotton kurta", Price: 1299, StockQuantity: 40, MainImage: "/images/kurta.jpg"},
		{Name: "Steel Water Bottle", Description: "1L insulated bottle", Price: 749, StockQuantity: 120, MainImage: "/images/bottle.jpg"},
		{Name: "Brass Diya Set", Description: "Set of four brass lamps", Price: 499, StockQuantity: 75, MainImage: "/images/diya.jpg"},
	}

	if err := conn.Create(&products).Error; err != nil {
		return err
	}

	logger.Info("Products seeded successfully", map[string]interface{}{
		"total_records": len(products),
	})
	return nil
}
