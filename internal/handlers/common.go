package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/swcms/internal/services"
)

// serviceError translates service-layer errors into HTTP errors. Ward-scope
// misses arrive as ErrNotFound and stay 404 so existence is not leaked.
func serviceError(err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return fiber.NewError(fiber.StatusBadRequest, validationErr.Msg)
	}

	var transitionErr *services.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return fiber.NewError(fiber.StatusConflict, transitionErr.Error())
	}

	var integrityErr *services.IntegrityError
	if errors.As(err, &integrityErr) {
		return fiber.NewError(fiber.StatusConflict, integrityErr.Msg)
	}

	var gatewayErr *services.GatewayError
	if errors.As(err, &gatewayErr) {
		return fiber.NewError(fiber.StatusBadGateway, "payment gateway unavailable")
	}

	if errors.Is(err, services.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "not found")
	}

	return err
}
