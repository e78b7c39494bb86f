package models

import (
	"github.com/google/uuid"
)

// Reward holds a user's reward points and the running total of waste
// attributed to them from completed pickups. Points and totals are rewritten
// wholesale by the reward recalculation; bonus awards increment points directly.
type Reward struct {
	BaseModel
	UserID              uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	User                *User     `json:"user,omitempty"`
	Points              int       `json:"points"`
	TotalWasteCollected float64   `json:"total_waste_collected"`
}
