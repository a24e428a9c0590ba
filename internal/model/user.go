package model

import (
	"strings"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	FullName string `json:"full_name" gorm:"not null"`

	// Cached Stripe customer ID; filled by the sync workflow when the
	// customer is first resolved via email lookup.
	StripeCustomerID string `json:"stripe_customer_id" gorm:"index"`

	Roles    []UserRole    `json:"-"`
	Orders   []Order       `json:"-"`
	Accesses []VideoAccess `json:"-"`
}

const RoleAdmin = "admin"

type UserRole struct {
	gorm.Model
	UserID uint   `json:"user_id" gorm:"uniqueIndex:idx_user_role;not null"`
	Role   string `json:"role" gorm:"uniqueIndex:idx_user_role;not null"` // admin

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":                 u.ID,
		"email":              u.Email,
		"full_name":          u.FullName,
		"stripe_customer_id": u.StripeCustomerID,
	}
}

func (u *User) FirstName() string {
	parts := strings.Fields(u.FullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
