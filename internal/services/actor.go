package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/models"
)

// Actor is the authorization context for a workflow operation: the
// authenticated principal, their role, and their ward assignment. Every
// service operation checks capabilities against it once instead of
// re-resolving the current user.
type Actor struct {
	UserID uuid.UUID
	Role   string
	WardID *uuid.UUID
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsWorker reports whether the actor holds the worker role.
func (a Actor) IsWorker() bool {
	return a.Role == models.RoleWorker
}

// collectorWard returns the ward a worker is scoped to. Admins are unscoped
// and get (nil, nil). Workers without an assigned ward are not authorized
// for any collection duty.
func (a Actor) collectorWard() (*uuid.UUID, error) {
	if a.IsAdmin() {
		return nil, nil
	}
	if !a.IsWorker() {
		return nil, ErrNotFound
	}
	if a.WardID == nil {
		return nil, newValidationError("ward assignment required for worker operations")
	}
	return a.WardID, nil
}

// pickupForCollector loads a pickup request visible to the acting collector.
// Workers only see requests whose owner belongs to their own ward; a request
// outside that scope is indistinguishable from a missing one.
func pickupForCollector(tx *gorm.DB, actor Actor, id uuid.UUID) (*models.PickupRequest, error) {
	ward, err := actor.collectorWard()
	if err != nil {
		return nil, err
	}

	var pickup models.PickupRequest
	query := tx.Model(&models.PickupRequest{}).Select("pickup_requests.*")
	if ward != nil {
		query = query.
			Joins("JOIN profiles ON profiles.user_id = pickup_requests.user_id").
			Where("profiles.ward_id = ?", *ward)
	}

	if err := query.Where("pickup_requests.id = ?", id).First(&pickup).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &pickup, nil
}
