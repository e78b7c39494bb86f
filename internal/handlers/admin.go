package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/middleware"
	"github.com/example/swcms/internal/models"
	"github.com/example/swcms/internal/services"
	"github.com/example/swcms/internal/utils"
)

// AdminHandler manages admin-only endpoints: panchayath and ward management,
// user role assignment, system-wide overviews and reward administration.
type AdminHandler struct {
	db          *gorm.DB
	panchayaths *services.PanchayathService
	rewards     *services.RewardService
	feedback    *services.FeedbackService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, panchayaths *services.PanchayathService, rewards *services.RewardService, feedback *services.FeedbackService) *AdminHandler {
	return &AdminHandler{db: db, panchayaths: panchayaths, rewards: rewards, feedback: feedback}
}

// ListPanchayaths returns all panchayaths with their wards.
func (h *AdminHandler) ListPanchayaths(c *fiber.Ctx) error {
	var items []models.Panchayath
	if err := h.db.Preload("Wards").Order("name asc").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

type panchayathRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreatePanchayath persists a new panchayath.
func (h *AdminHandler) CreatePanchayath(c *fiber.Ctx) error {
	var req panchayathRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.panchayaths.CreatePanchayath(c.Context(), services.PanchayathInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// UpdatePanchayath updates an existing panchayath.
func (h *AdminHandler) UpdatePanchayath(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req panchayathRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.panchayaths.UpdatePanchayath(c.Context(), id, services.PanchayathInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeletePanchayath removes a panchayath that owns no wards.
func (h *AdminHandler) DeletePanchayath(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.panchayaths.DeletePanchayath(c.Context(), id); err != nil {
		return serviceError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListWards returns wards, optionally filtered by panchayath.
func (h *AdminHandler) ListWards(c *fiber.Ctx) error {
	query := h.db.Preload("Panchayath")
	if pid := c.Query("panchayath_id"); pid != "" {
		parsed, err := uuid.Parse(pid)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid panchayath_id")
		}
		query = query.Where("panchayath_id = ?", parsed)
	}

	var wards []models.Ward
	if err := query.Order("ward_number asc").Find(&wards).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": wards})
}

type wardRequest struct {
	Name         string `json:"name"`
	PanchayathID string `json:"panchayath_id"`
	WardNumber   int    `json:"ward_number"`
}

// CreateWard persists a new ward under a panchayath.
func (h *AdminHandler) CreateWard(c *fiber.Ctx) error {
	var req wardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	panchayathID, err := uuid.Parse(req.PanchayathID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid panchayath_id")
	}

	ward, err := h.panchayaths.CreateWard(c.Context(), services.WardInput{
		Name:         req.Name,
		PanchayathID: panchayathID,
		WardNumber:   req.WardNumber,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": ward})
}

// DeleteWard removes a ward no profile references.
func (h *AdminHandler) DeleteWard(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.panchayaths.DeleteWard(c.Context(), id); err != nil {
		return serviceError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListUsers returns registered users with their profiles.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Preload("Profile").Preload("Profile.Ward").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type assignRoleRequest struct {
	Role   string `json:"role"`
	WardID string `json:"ward_id"`
}

// AssignRole changes a user's role and ward assignment.
func (h *AdminHandler) AssignRole(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req assignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var wardID *uuid.UUID
	if req.WardID != "" {
		parsed, err := uuid.Parse(req.WardID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid ward_id")
		}
		wardID = &parsed
	}

	profile, err := h.panchayaths.AssignRole(c.Context(), actor, userID, services.AssignRoleInput{
		Role:   req.Role,
		WardID: wardID,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

// ListAllPickups returns every pickup request with status filtering.
func (h *AdminHandler) ListAllPickups(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.PickupRequest{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var pickups []models.PickupRequest
	if err := query.Preload("User").Preload("Payment").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&pickups).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    pickups,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.Profile{}).
		Where("role = ?", models.RoleUser).
		Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalWorkers int64
	if err := h.db.Model(&models.Profile{}).
		Where("role = ?", models.RoleWorker).
		Count(&totalWorkers).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.PickupRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	pickupsByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		pickupsByStatus[sc.Status] = sc.Count
	}

	var totalWaste float64
	if err := h.db.Model(&models.PickupRequest{}).
		Where("status = ?", models.PickupStatusCompleted).
		Select("COALESCE(SUM(waste_weight), 0)").
		Scan(&totalWaste).Error; err != nil {
		return err
	}

	var collectedPayments float64
	if err := h.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&collectedPayments).Error; err != nil {
		return err
	}

	var pendingFeedback int64
	if err := h.db.Model(&models.Feedback{}).
		Where("status = ?", models.FeedbackStatusPending).
		Count(&pendingFeedback).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":        totalUsers,
			"total_workers":      totalWorkers,
			"pickups_by_status":  pickupsByStatus,
			"total_waste_kg":     totalWaste,
			"collected_payments": collectedPayments,
			"pending_feedback":   pendingFeedback,
		},
	})
}

// RecalculateRewards triggers a full reward recomputation on demand.
func (h *AdminHandler) RecalculateRewards(c *fiber.Ctx) error {
	if err := h.rewards.Recalculate(c.Context()); err != nil {
		return serviceError(err)
	}

	var rewards []models.Reward
	if err := h.db.Preload("User").
		Order("points desc").
		Find(&rewards).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": rewards})
}

type awardBonusRequest struct {
	Points int `json:"points"`
}

// AwardBonus grants bonus points to the resident with the lowest waste total.
func (h *AdminHandler) AwardBonus(c *fiber.Ctx) error {
	var req awardBonusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reward, err := h.rewards.AwardBonus(c.Context(), req.Points)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": reward})
}

// ListAllFeedback returns feedback across all wards with status filtering.
func (h *AdminHandler) ListAllFeedback(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Feedback{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.Query("complaints") == "true" {
		query = query.Where("is_complaint = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var items []models.Feedback
	if err := query.Preload("User").Preload("Ward").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type respondFeedbackRequest struct {
	Response string `json:"response"`
}

// RespondFeedback sets a response and resolves feedback in one step.
func (h *AdminHandler) RespondFeedback(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req respondFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.feedback.RespondAndResolve(c.Context(), actor, id, req.Response)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": feedback})
}
