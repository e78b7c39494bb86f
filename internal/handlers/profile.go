package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/middleware"
	"github.com/example/swcms/internal/models"
)

// ProfileHandler serves the resident dashboard and profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the caller's profile together with dashboard data:
// upcoming pending pickups, previous pickups and reward points.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var profile models.Profile
	if err := h.db.Preload("Ward").Preload("Ward.Panchayath").
		First(&profile, "user_id = ?", actor.UserID).Error; err != nil {
		return err
	}

	var upcoming []models.PickupRequest
	if err := h.db.
		Where("user_id = ? AND status = ? AND schedule_date_time >= ?",
			actor.UserID, models.PickupStatusPending, time.Now()).
		Order("schedule_date_time asc").
		Find(&upcoming).Error; err != nil {
		return err
	}

	var previous []models.PickupRequest
	if err := h.db.
		Where("user_id = ? AND status != ?", actor.UserID, models.PickupStatusPending).
		Order("schedule_date_time desc").
		Find(&previous).Error; err != nil {
		return err
	}

	var reward models.Reward
	if err := h.db.Where("user_id = ?", actor.UserID).
		FirstOrCreate(&reward, models.Reward{UserID: actor.UserID}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"profile":               profile,
			"upcoming_pickups":      upcoming,
			"previous_pickups":      previous,
			"reward_points":         reward.Points,
			"total_waste_collected": reward.TotalWasteCollected,
		},
	})
}

type updateProfileRequest struct {
	MobileNumber *string `json:"mobile_number"`
	Location     *string `json:"location"`
}

// UpdateProfile updates the caller's contact fields. Role and ward are
// admin-managed and cannot be changed here.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]any{}
	if req.MobileNumber != nil {
		updates["mobile_number"] = *req.MobileNumber
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}

	if len(updates) > 0 {
		if err := h.db.Model(&models.Profile{}).
			Where("user_id = ?", actor.UserID).
			Updates(updates).Error; err != nil {
			return err
		}
	}

	var profile models.Profile
	if err := h.db.Preload("Ward").First(&profile, "user_id = ?", actor.UserID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}
