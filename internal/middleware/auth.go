package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/config"
	"github.com/example/swcms/internal/models"
	"github.com/example/swcms/internal/services"
	"github.com/example/swcms/internal/utils"
)

const actorContextKey = "currentActor"

// AuthMiddleware validates JWT tokens, loads the caller's profile and stores
// the resulting authorization actor (principal, role, ward) in context.
func AuthMiddleware(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		userID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		var profile models.Profile
		if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(actorContextKey, services.Actor{
			UserID: userID,
			Role:   profile.Role,
			WardID: profile.WardID,
		})
		return c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusForbidden, "forbidden")
	}
}

// GetActor extracts the authorization actor from context.
func GetActor(c *fiber.Ctx) (services.Actor, bool) {
	value := c.Locals(actorContextKey)
	if value == nil {
		return services.Actor{}, false
	}

	if actor, ok := value.(services.Actor); ok {
		return actor, true
	}

	return services.Actor{}, false
}
