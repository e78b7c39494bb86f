package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/middleware"
	"github.com/example/swcms/internal/models"
	"github.com/example/swcms/internal/services"
)

// PickupHandler manages resident pickup-request endpoints.
type PickupHandler struct {
	db        *gorm.DB
	pickups   *services.PickupService
	telegram  *services.TelegramService
	uploadDir string
}

// NewPickupHandler constructs PickupHandler.
func NewPickupHandler(db *gorm.DB, pickups *services.PickupService, telegram *services.TelegramService, uploadDir string) *PickupHandler {
	return &PickupHandler{db: db, pickups: pickups, telegram: telegram, uploadDir: uploadDir}
}

type createPickupRequest struct {
	WasteType        string    `json:"waste_type"`
	Description      string    `json:"description"`
	ScheduleDateTime time.Time `json:"schedule_date_time"`
}

// Create submits a new pickup request for the authenticated resident.
func (h *PickupHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createPickupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	pickup, err := h.pickups.Create(c.Context(), actor, services.CreatePickupInput{
		WasteType:        req.WasteType,
		Description:      req.Description,
		ScheduleDateTime: req.ScheduleDateTime,
	})
	if err != nil {
		return serviceError(err)
	}

	if h.telegram != nil {
		go h.notifyNewPickup(*pickup, actor)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": pickup})
}

func (h *PickupHandler) notifyNewPickup(pickup models.PickupRequest, actor services.Actor) {
	var user models.User
	if err := h.db.First(&user, "id = ?", actor.UserID).Error; err != nil {
		return
	}

	wardName := ""
	if actor.WardID != nil {
		var ward models.Ward
		if err := h.db.First(&ward, "id = ?", *actor.WardID).Error; err == nil {
			wardName = ward.Name
		}
	}

	if err := h.telegram.NotifyNewPickup(services.PickupNotification{
		RequestID:   pickup.RequestID.String(),
		UserName:    user.Username,
		WasteType:   pickup.WasteType,
		ScheduledAt: pickup.ScheduleDateTime,
		Ward:        wardName,
	}); err != nil {
		log.Printf("[Pickup] Telegram notification failed: %v", err)
	}
}

// List returns the caller's pickup requests, optionally filtered by status.
func (h *PickupHandler) List(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pickups, err := h.pickups.ListForUser(c.Context(), actor, c.Query("status"))
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": pickups})
}

// Get returns a single pickup request owned by the caller.
func (h *PickupHandler) Get(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	pickup, err := h.pickups.Get(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": pickup})
}

// Cancel cancels a pending pickup request owned by the caller.
func (h *PickupHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	pickup, err := h.pickups.Cancel(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": pickup})
}

// UploadImage stores an image for a pickup request and records its path.
func (h *PickupHandler) UploadImage(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	pickup, err := h.pickups.Get(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "image file is required")
	}

	path := filepath.Join(h.uploadDir, fmt.Sprintf("%s%s", pickup.RequestID, filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, path); err != nil {
		return err
	}

	if err := h.db.Model(&models.PickupRequest{}).
		Where("id = ?", pickup.ID).
		Update("image_path", path).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"image_path": path}})
}
