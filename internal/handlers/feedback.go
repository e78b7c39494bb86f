package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/swcms/internal/middleware"
	"github.com/example/swcms/internal/services"
)

// FeedbackHandler manages resident feedback endpoints.
type FeedbackHandler struct {
	feedback *services.FeedbackService
}

// NewFeedbackHandler constructs FeedbackHandler.
func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

type submitFeedbackRequest struct {
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	IsComplaint bool   `json:"is_complaint"`
	WardID      string `json:"ward_id"`
}

// Submit records new feedback from the authenticated resident.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req submitFeedbackRequest
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

	feedback, err := h.feedback.Submit(c.Context(), actor, services.SubmitFeedbackInput{
		Subject:     req.Subject,
		Message:     req.Message,
		IsComplaint: req.IsComplaint,
		WardID:      wardID,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": feedback})
}

// ListMine returns the caller's own feedback.
func (h *FeedbackHandler) ListMine(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.feedback.ListMine(c.Context(), actor)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}
