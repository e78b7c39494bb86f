package models

import (
	"github.com/google/uuid"
)

// Feedback statuses.
const (
	FeedbackStatusPending  = "pending"
	FeedbackStatusResolved = "resolved"
)

// Feedback is a resident's feedback or complaint, optionally routed to a ward
// so workers of that ward can see and resolve it.
type Feedback struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User        *User      `json:"user,omitempty"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	IsComplaint bool       `json:"is_complaint"`
	WardID      *uuid.UUID `gorm:"type:uuid;index" json:"ward_id"`
	Ward        *Ward      `json:"ward,omitempty"`
	Status      string     `gorm:"default:pending;index" json:"status"`
	Response    string     `json:"response"`
}
