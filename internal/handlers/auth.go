package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/config"
	"github.com/example/swcms/internal/models"
	"github.com/example/swcms/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type registerRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobile_number"`
	Location     string `json:"location"`
	WardID       string `json:"ward_id"`
}

// RegisterUser creates a resident account.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	return h.register(c, models.RoleUser)
}

// RegisterWorker creates a worker account.
func (h *AuthHandler) RegisterWorker(c *fiber.Ctx) error {
	return h.register(c, models.RoleWorker)
}

// RegisterAdmin creates an admin account.
func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	return h.register(c, models.RoleAdmin)
}

func (h *AuthHandler) register(c *fiber.Ctx, role string) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var wardID *uuid.UUID
	if req.WardID != "" {
		parsed, err := uuid.Parse(req.WardID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid ward_id")
		}
		var ward models.Ward
		if err := h.db.First(&ward, "id = ?", parsed).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusBadRequest, "unknown ward")
			}
			return err
		}
		wardID = &parsed
	}

	var existing models.User
	if err := h.db.Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile := models.Profile{
			UserID:       user.ID,
			Role:         role,
			WardID:       wardID,
			MobileNumber: req.MobileNumber,
			Location:     req.Location,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		return tx.Create(&models.Reward{UserID: user.ID}).Error
	})
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     role,
		},
		"token": token,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	var profile models.Profile
	if err := h.db.First(&profile, "user_id = ?", user.ID).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     profile.Role,
		},
		"token": token,
	})
}
