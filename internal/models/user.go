package models

import (
	"github.com/google/uuid"
)

// Profile roles.
const (
	RoleUser   = "user"
	RoleWorker = "worker"
	RoleAdmin  = "admin"
)

// User represents an authenticated account.
type User struct {
	BaseModel
	Username     string   `gorm:"uniqueIndex" json:"username"`
	Email        string   `gorm:"uniqueIndex" json:"email"`
	PasswordHash string   `json:"-"`
	Profile      *Profile `json:"profile,omitempty"`
}

// Profile carries role and ward assignment for a user. Role and ward are
// mutable only through admin endpoints after registration.
type Profile struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Role         string     `gorm:"default:user" json:"role"`
	WardID       *uuid.UUID `gorm:"type:uuid;index" json:"ward_id"`
	Ward         *Ward      `json:"ward,omitempty"`
	MobileNumber string     `json:"mobile_number"`
	Location     string     `json:"location"`
}
