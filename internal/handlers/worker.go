package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/swcms/internal/middleware"
	"github.com/example/swcms/internal/services"
	"github.com/example/swcms/internal/utils"
)

// WorkerHandler serves collection duties: ward-scoped pickup transitions,
// feedback resolution and cash collection.
type WorkerHandler struct {
	pickups  *services.PickupService
	feedback *services.FeedbackService
	payments *services.PaymentService
}

// NewWorkerHandler constructs WorkerHandler.
func NewWorkerHandler(pickups *services.PickupService, feedback *services.FeedbackService, payments *services.PaymentService) *WorkerHandler {
	return &WorkerHandler{pickups: pickups, feedback: feedback, payments: payments}
}

// ListPickups returns pickups the collector may operate on, ward scoped for
// workers, optionally filtered by status.
func (h *WorkerHandler) ListPickups(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	pickups, total, err := h.pickups.ListEligible(c.Context(), actor, c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return serviceError(err)
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

// MarkPicked transitions a pending pickup to picked.
func (h *WorkerHandler) MarkPicked(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	pickup, err := h.pickups.MarkPicked(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": pickup})
}

type markCompletedRequest struct {
	WasteWeight float64 `json:"waste_weight"`
}

// MarkCompleted transitions a picked pickup to completed with the collected
// weight, recomputing rewards as part of the same transaction.
func (h *WorkerHandler) MarkCompleted(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req markCompletedRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	pickup, err := h.pickups.MarkCompleted(c.Context(), actor, id, req.WasteWeight)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": pickup})
}

// CollectCash records manual cash collection for a completed pickup.
func (h *WorkerHandler) CollectCash(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result, err := h.payments.CollectCash(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	if result.AlreadyDone {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "payment already completed",
			"data":    result.Payment,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": result.Payment})
}

// ListFeedback returns feedback visible to the collector.
func (h *WorkerHandler) ListFeedback(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	items, total, err := h.feedback.ListForCollector(c.Context(), actor, c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return serviceError(err)
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

// ResolveFeedback marks pending feedback as resolved.
func (h *WorkerHandler) ResolveFeedback(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	feedback, err := h.feedback.Resolve(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": feedback})
}
