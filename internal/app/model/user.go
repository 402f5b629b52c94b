package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string // account privilege level

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// AuthProvider records how an account signs in.
type AuthProvider string

const (
	ProviderCredentials AuthProvider = "credentials"
	ProviderGoogle      AuthProvider = "google"
)

type User struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string         `json:"-"` // empty for OAuth-only accounts
	Name           string         `gorm:"not null" json:"name"`
	Image          string         `json:"image,omitempty"`
	Role           UserRole       `gorm:"type:varchar(20);default:'USER'" json:"role"`
	Provider       AuthProvider   `gorm:"type:varchar(20);default:'credentials'" json:"provider"`
	ProviderUserID string         `gorm:"index" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// Identity returns the request-scoped view of the account.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role}
}
