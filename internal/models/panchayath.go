package models

import (
	"github.com/google/uuid"
)

// Panchayath is a local self-government unit, the top-level geographic grouping.
type Panchayath struct {
	BaseModel
	Name        string `gorm:"uniqueIndex" json:"name"`
	Code        string `gorm:"uniqueIndex" json:"code"`
	Description string `json:"description"`
	Wards       []Ward `json:"wards,omitempty"`
}

// Ward is a subdivision of a panchayath and the scope boundary for worker duties.
// Ward numbers are unique within their panchayath.
type Ward struct {
	BaseModel
	Name         string      `json:"name"`
	PanchayathID uuid.UUID   `gorm:"type:uuid;index;uniqueIndex:idx_wards_panchayath_number" json:"panchayath_id"`
	Panchayath   *Panchayath `json:"panchayath,omitempty"`
	WardNumber   int         `gorm:"uniqueIndex:idx_wards_panchayath_number" json:"ward_number"`
}
