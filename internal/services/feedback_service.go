package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/models"
)

// FeedbackService enforces the feedback lifecycle: pending -> resolved.
// Workers only see and resolve feedback tagged with their own ward.
type FeedbackService struct {
	db *gorm.DB
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// SubmitFeedbackInput carries the fields a resident submits.
type SubmitFeedbackInput struct {
	Subject     string
	Message     string
	IsComplaint bool
	WardID      *uuid.UUID
}

// Submit records new feedback from the acting resident.
func (s *FeedbackService) Submit(ctx context.Context, actor Actor, in SubmitFeedbackInput) (*models.Feedback, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, newValidationError("subject is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, newValidationError("message is required")
	}

	if in.WardID != nil {
		var ward models.Ward
		if err := s.db.WithContext(ctx).First(&ward, "id = ?", *in.WardID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, newValidationError("unknown ward")
			}
			return nil, err
		}
	}

	feedback := models.Feedback{
		UserID:      actor.UserID,
		Subject:     in.Subject,
		Message:     in.Message,
		IsComplaint: in.IsComplaint,
		WardID:      in.WardID,
		Status:      models.FeedbackStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&feedback).Error; err != nil {
		return nil, err
	}

	return &feedback, nil
}

// ListMine returns the acting resident's own feedback.
func (s *FeedbackService) ListMine(ctx context.Context, actor Actor) ([]models.Feedback, error) {
	var items []models.Feedback
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", actor.UserID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListForCollector returns feedback visible to the acting collector: the
// worker's own ward, or everything for admins.
func (s *FeedbackService) ListForCollector(ctx context.Context, actor Actor, status string, limit, offset int) ([]models.Feedback, int64, error) {
	ward, err := actor.collectorWard()
	if err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Model(&models.Feedback{})
	if ward != nil {
		query = query.Where("ward_id = ?", *ward)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Feedback
	if err := query.Preload("User").Preload("Ward").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Resolve marks pending feedback resolved. Workers are scoped to their own
// ward; out-of-ward feedback looks missing.
func (s *FeedbackService) Resolve(ctx context.Context, actor Actor, id uuid.UUID) (*models.Feedback, error) {
	feedback, err := s.findForCollector(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if feedback.Status != models.FeedbackStatusPending {
		return nil, &InvalidTransitionError{Action: "resolve", Status: feedback.Status}
	}

	if err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("id = ?", feedback.ID).
		Update("status", models.FeedbackStatusResolved).Error; err != nil {
		return nil, err
	}

	feedback.Status = models.FeedbackStatusResolved
	return feedback, nil
}

// RespondAndResolve sets the response text and resolves in one step.
// Admin only; an empty response is rejected with no state change.
func (s *FeedbackService) RespondAndResolve(ctx context.Context, actor Actor, id uuid.UUID, response string) (*models.Feedback, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotFound
	}
	if strings.TrimSpace(response) == "" {
		return nil, newValidationError("response text is required")
	}

	var feedback models.Feedback
	err := s.db.WithContext(ctx).First(&feedback, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if feedback.Status != models.FeedbackStatusPending {
		return nil, &InvalidTransitionError{Action: "resolve", Status: feedback.Status}
	}

	if err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("id = ?", feedback.ID).
		Updates(map[string]any{
			"response": response,
			"status":   models.FeedbackStatusResolved,
		}).Error; err != nil {
		return nil, err
	}

	feedback.Response = response
	feedback.Status = models.FeedbackStatusResolved
	return &feedback, nil
}

func (s *FeedbackService) findForCollector(ctx context.Context, actor Actor, id uuid.UUID) (*models.Feedback, error) {
	ward, err := actor.collectorWard()
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx)
	if ward != nil {
		query = query.Where("ward_id = ?", *ward)
	}

	var feedback models.Feedback
	if err := query.First(&feedback, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &feedback, nil
}
