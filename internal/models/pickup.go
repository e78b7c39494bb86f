package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Waste types accepted on a pickup request.
const (
	WasteTypeWet        = "wet"
	WasteTypeDry        = "dry"
	WasteTypePlastic    = "plastic"
	WasteTypeEWaste     = "e-waste"
	WasteTypeRecyclable = "recyclable"
)

// Pickup request statuses.
const (
	PickupStatusPending   = "pending"
	PickupStatusPicked    = "picked"
	PickupStatusCompleted = "completed"
	PickupStatusCancelled = "cancelled"
)

// ValidWasteType reports whether t is one of the accepted waste types.
func ValidWasteType(t string) bool {
	switch t {
	case WasteTypeWet, WasteTypeDry, WasteTypePlastic, WasteTypeEWaste, WasteTypeRecyclable:
		return true
	}
	return false
}

// PickupRequest is a resident's request to have waste collected.
// RequestID is an opaque token assigned once at creation.
// WasteWeight is set only when the request is marked completed.
type PickupRequest struct {
	BaseModel
	RequestID        uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"request_id"`
	UserID           uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User             *User      `json:"user,omitempty"`
	WasteType        string     `json:"waste_type"`
	Description      string     `json:"description"`
	ImagePath        string     `json:"image_path"`
	ScheduleDateTime time.Time  `json:"schedule_date_time"`
	Status           string     `gorm:"default:pending;index" json:"status"`
	WasteWeight      *float64   `json:"waste_weight"`
	Payment          *Payment   `json:"payment,omitempty"`
}

// BeforeCreate assigns the immutable request token alongside the base UUID.
func (p *PickupRequest) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if p.RequestID == uuid.Nil {
		p.RequestID = uuid.New()
	}
	return nil
}
