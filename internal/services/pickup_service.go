package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/models"
)

// PickupService enforces the pickup request lifecycle:
// pending -> picked -> completed, with pending -> cancelled as the only
// other legal move. Collection transitions are ward-scoped for workers.
type PickupService struct {
	db      *gorm.DB
	rewards *RewardService
	now     func() time.Time
}

// NewPickupService constructs a PickupService.
func NewPickupService(db *gorm.DB, rewards *RewardService) *PickupService {
	return &PickupService{db: db, rewards: rewards, now: time.Now}
}

// CreatePickupInput carries the fields a resident submits for a new request.
type CreatePickupInput struct {
	WasteType        string
	Description      string
	ScheduleDateTime time.Time
}

// Create submits a new pickup request for the acting resident.
func (s *PickupService) Create(ctx context.Context, actor Actor, in CreatePickupInput) (*models.PickupRequest, error) {
	if !models.ValidWasteType(in.WasteType) {
		return nil, newValidationError("unknown waste type %q", in.WasteType)
	}
	if in.ScheduleDateTime.Before(s.now()) {
		return nil, newValidationError("schedule date and time must not be in the past")
	}

	pickup := models.PickupRequest{
		UserID:           actor.UserID,
		WasteType:        in.WasteType,
		Description:      in.Description,
		ScheduleDateTime: in.ScheduleDateTime,
		Status:           models.PickupStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&pickup).Error; err != nil {
		return nil, err
	}

	return &pickup, nil
}

// Get returns a pickup request owned by the acting resident.
func (s *PickupService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.PickupRequest, error) {
	var pickup models.PickupRequest
	err := s.db.WithContext(ctx).Preload("Payment").
		First(&pickup, "id = ? AND user_id = ?", id, actor.UserID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pickup, nil
}

// Cancel cancels a pending request. Only the owning resident may cancel,
// and only while the request is still pending.
func (s *PickupService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.PickupRequest, error) {
	var pickup models.PickupRequest
	err := s.db.WithContext(ctx).
		First(&pickup, "id = ? AND user_id = ?", id, actor.UserID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if pickup.Status != models.PickupStatusPending {
		return nil, &InvalidTransitionError{Action: "cancel", Status: pickup.Status}
	}

	if err := s.db.WithContext(ctx).Model(&pickup).
		Update("status", models.PickupStatusCancelled).Error; err != nil {
		return nil, err
	}

	pickup.Status = models.PickupStatusCancelled
	return &pickup, nil
}

// MarkPicked moves a pending request to picked. Workers must match the
// request owner's ward; admins are unscoped.
func (s *PickupService) MarkPicked(ctx context.Context, actor Actor, id uuid.UUID) (*models.PickupRequest, error) {
	pickup, err := pickupForCollector(s.db.WithContext(ctx), actor, id)
	if err != nil {
		return nil, err
	}

	if pickup.Status != models.PickupStatusPending {
		return nil, &InvalidTransitionError{Action: "mark picked", Status: pickup.Status}
	}

	if err := s.db.WithContext(ctx).Model(&models.PickupRequest{}).
		Where("id = ?", pickup.ID).
		Update("status", models.PickupStatusPicked).Error; err != nil {
		return nil, err
	}

	pickup.Status = models.PickupStatusPicked
	return pickup, nil
}

// MarkCompleted moves a picked request to completed, recording the collected
// weight and recomputing rewards in the same transaction. A failure anywhere
// rolls the whole transition back.
func (s *PickupService) MarkCompleted(ctx context.Context, actor Actor, id uuid.UUID, wasteWeight float64) (*models.PickupRequest, error) {
	if wasteWeight <= 0 {
		return nil, newValidationError("waste weight must be greater than zero")
	}
	wasteWeight = math.Round(wasteWeight*100) / 100

	// The recompute lock spans the whole transaction so a concurrent
	// completion cannot scan before this one's commit lands.
	var pickup *models.PickupRequest
	err := s.rewards.locked(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			pickup, err = pickupForCollector(tx, actor, id)
			if err != nil {
				return err
			}

			if pickup.Status != models.PickupStatusPicked {
				return &InvalidTransitionError{Action: "mark completed", Status: pickup.Status}
			}

			if err := tx.Model(&models.PickupRequest{}).
				Where("id = ?", pickup.ID).
				Updates(map[string]any{
					"status":       models.PickupStatusCompleted,
					"waste_weight": wasteWeight,
				}).Error; err != nil {
				return err
			}

			return s.rewards.RecalculateIn(tx)
		})
	})
	if err != nil {
		return nil, err
	}

	pickup.Status = models.PickupStatusCompleted
	pickup.WasteWeight = &wasteWeight
	return pickup, nil
}

// ListForUser returns the acting resident's requests, optionally filtered
// by status.
func (s *PickupService) ListForUser(ctx context.Context, actor Actor, status string) ([]models.PickupRequest, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", actor.UserID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var pickups []models.PickupRequest
	if err := query.Order("schedule_date_time desc").Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

// ListEligible returns requests the acting collector may operate on, ward
// scoped for workers, with pagination.
func (s *PickupService) ListEligible(ctx context.Context, actor Actor, status string, limit, offset int) ([]models.PickupRequest, int64, error) {
	ward, err := actor.collectorWard()
	if err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Model(&models.PickupRequest{}).Select("pickup_requests.*")
	if ward != nil {
		query = query.
			Joins("JOIN profiles ON profiles.user_id = pickup_requests.user_id").
			Where("profiles.ward_id = ?", *ward)
	}
	if status != "" {
		query = query.Where("pickup_requests.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pickups []models.PickupRequest
	if err := query.Preload("User").
		Order("pickup_requests.schedule_date_time asc").
		Limit(limit).Offset(offset).
		Find(&pickups).Error; err != nil {
		return nil, 0, err
	}

	return pickups, total, nil
}
