package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values assignable to a user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Status values for the account lifecycle. Accounts start inactive and become
// active once the email is verified; admins may toggle either way.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an account record. A code column and its paired expiry column are
// always both nil or both set.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Role   string `gorm:"default:user" json:"role"`
	Status string `gorm:"default:inactive" json:"status"`

	VerificationCode          *string    `json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	ResetCode                 *string    `json:"-"`
	ResetCodeExpiresAt        *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
