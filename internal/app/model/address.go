package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a shipping address. A user has at most one row with IsDefault set;
// the repository clears the others inside the transaction that sets it.
type Address struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;index:idx_addresses_user_default" json:"userId"`
	FullName    string    `gorm:"size:100;not null" json:"fullName"`
	PhoneNumber string    `gorm:"size:30;not null" json:"phoneNumber"`
	Pincode     string    `gorm:"size:10;not null" json:"pincode"`
	Area        string    `gorm:"type:text;not null" json:"area"`
	City        string    `gorm:"size:100;not null" json:"city"`
	State       string    `gorm:"size:100;not null" json:"state"`
	IsDefault   bool      `gorm:"not null;default:false;index:idx_addresses_user_default" json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AddressFields are the user-editable columns of an address.
type AddressFields struct {
	FullName    string
	PhoneNumber string
	Pincode     string
	Area        string
	City        string
	State       string
}

// Columns maps the fields onto their column names for partial updates.
func (f AddressFields) Columns() map[string]interface{} {
	return map[string]interface{}{
		"full_name":    f.FullName,
		"phone_number": f.PhoneNumber,
		"pincode":      f.Pincode,
		"area":         f.Area,
		"city":         f.City,
		"state":        f.State,
	}
}
