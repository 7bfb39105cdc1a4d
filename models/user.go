package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleKitchen  UserRole = "kitchen"
	RoleDriver   UserRole = "driver"
	RoleAdmin    UserRole = "admin"
)

// ValidRole reports whether r is one of the defined roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleCustomer, RoleKitchen, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'customer'"`
	Phone        string    `json:"phone"`
	Language     string    `json:"language" gorm:"default:'ar'"` // preferred UI language: ar or en
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
