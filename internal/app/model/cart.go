package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one product line in a user's cart. At most one row exists per
// (UserID, ProductID); the repository upserts instead of inserting duplicates.
type CartItem struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_cart_items_user_product" json:"userId"`
	ProductID string    `gorm:"type:varchar(36);not null;index:idx_cart_items_user_product" json:"productId"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CartLine is a cart item joined with its product for listing.
type CartLine struct {
	ID        string  `json:"id"`
	Quantity  int     `json:"quantity"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	MainImage string  `json:"mainImage"`
}
