package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/models"
)

// PanchayathService manages panchayaths, wards and role assignments.
// Deletions are blocked while dependents exist.
type PanchayathService struct {
	db *gorm.DB
}

// NewPanchayathService constructs a PanchayathService.
func NewPanchayathService(db *gorm.DB) *PanchayathService {
	return &PanchayathService{db: db}
}

// PanchayathInput carries panchayath fields.
type PanchayathInput struct {
	Name        string
	Code        string
	Description string
}

// CreatePanchayath persists a new panchayath. Name and code are unique.
func (s *PanchayathService) CreatePanchayath(ctx context.Context, in PanchayathInput) (*models.Panchayath, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Code) == "" {
		return nil, newValidationError("name and code are required")
	}

	var existing models.Panchayath
	err := s.db.WithContext(ctx).
		Where("name = ? OR code = ?", in.Name, in.Code).
		First(&existing).Error
	if err == nil {
		return nil, newValidationError("panchayath name or code already in use")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	panchayath := models.Panchayath{
		Name:        in.Name,
		Code:        in.Code,
		Description: in.Description,
	}
	if err := s.db.WithContext(ctx).Create(&panchayath).Error; err != nil {
		return nil, err
	}
	return &panchayath, nil
}

// UpdatePanchayath updates an existing panchayath.
func (s *PanchayathService) UpdatePanchayath(ctx context.Context, id uuid.UUID, in PanchayathInput) (*models.Panchayath, error) {
	var panchayath models.Panchayath
	err := s.db.WithContext(ctx).First(&panchayath, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if strings.TrimSpace(in.Name) != "" {
		updates["name"] = in.Name
	}
	if strings.TrimSpace(in.Code) != "" {
		updates["code"] = in.Code
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&panchayath).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &panchayath, nil
}

// DeletePanchayath removes a panchayath that owns no wards.
func (s *PanchayathService) DeletePanchayath(ctx context.Context, id uuid.UUID) error {
	var panchayath models.Panchayath
	err := s.db.WithContext(ctx).First(&panchayath, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var wards int64
	if err := s.db.WithContext(ctx).Model(&models.Ward{}).
		Where("panchayath_id = ?", id).
		Count(&wards).Error; err != nil {
		return err
	}
	if wards > 0 {
		return &IntegrityError{Msg: "panchayath still has wards assigned"}
	}

	return s.db.WithContext(ctx).Delete(&models.Panchayath{}, "id = ?", id).Error
}

// WardInput carries ward fields.
type WardInput struct {
	Name         string
	PanchayathID uuid.UUID
	WardNumber   int
}

// CreateWard persists a new ward. Ward numbers are unique per panchayath.
func (s *PanchayathService) CreateWard(ctx context.Context, in WardInput) (*models.Ward, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, newValidationError("ward name is required")
	}
	if in.WardNumber <= 0 {
		return nil, newValidationError("ward number must be positive")
	}

	var panchayath models.Panchayath
	err := s.db.WithContext(ctx).First(&panchayath, "id = ?", in.PanchayathID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, newValidationError("unknown panchayath")
	}
	if err != nil {
		return nil, err
	}

	var existing models.Ward
	err = s.db.WithContext(ctx).
		Where("panchayath_id = ? AND ward_number = ?", in.PanchayathID, in.WardNumber).
		First(&existing).Error
	if err == nil {
		return nil, newValidationError("ward number %d already exists in this panchayath", in.WardNumber)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	ward := models.Ward{
		Name:         in.Name,
		PanchayathID: in.PanchayathID,
		WardNumber:   in.WardNumber,
	}
	if err := s.db.WithContext(ctx).Create(&ward).Error; err != nil {
		return nil, err
	}
	return &ward, nil
}

// DeleteWard removes a ward no profile references.
func (s *PanchayathService) DeleteWard(ctx context.Context, id uuid.UUID) error {
	var ward models.Ward
	err := s.db.WithContext(ctx).First(&ward, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var profiles int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("ward_id = ?", id).
		Count(&profiles).Error; err != nil {
		return err
	}
	if profiles > 0 {
		return &IntegrityError{Msg: "ward still has profiles assigned"}
	}

	return s.db.WithContext(ctx).Delete(&models.Ward{}, "id = ?", id).Error
}

// AssignRoleInput carries an admin's role/ward assignment for a profile.
type AssignRoleInput struct {
	Role   string
	WardID *uuid.UUID
}

// AssignRole lets an admin change a user's role and ward. Role and ward are
// immutable through any other path after registration.
func (s *PanchayathService) AssignRole(ctx context.Context, actor Actor, userID uuid.UUID, in AssignRoleInput) (*models.Profile, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotFound
	}

	switch in.Role {
	case models.RoleUser, models.RoleWorker, models.RoleAdmin:
	default:
		return nil, newValidationError("unknown role %q", in.Role)
	}

	if in.WardID != nil {
		var ward models.Ward
		err := s.db.WithContext(ctx).First(&ward, "id = ?", *in.WardID).Error
		if err == gorm.ErrRecordNotFound {
			return nil, newValidationError("unknown ward")
		}
		if err != nil {
			return nil, err
		}
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&profile).
		Updates(map[string]any{"role": in.Role, "ward_id": in.WardID}).Error; err != nil {
		return nil, err
	}

	profile.Role = in.Role
	profile.WardID = in.WardID
	return &profile, nil
}
