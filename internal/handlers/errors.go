// Package handlers implements the platform's JSON HTTP handlers on Fiber.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// respondError maps the engine's error kinds onto HTTP responses:
// validation failures carry every field error for the client to surface at
// once, transition conflicts return 409, and unknown errors stay opaque.
func respondError(c *fiber.Ctx, err error) error {
	var validation *workflow.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation_failed",
			"fields": validation.Errors,
		})
	}

	var transition *workflow.InvalidTransitionError
	if errors.As(err, &transition) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "invalid_transition",
			"message": transition.Error(),
		})
	}

	var notFound *workflow.NotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": notFound.Error(),
		})
	}

	var forbidden *workflow.ForbiddenError
	if errors.As(err, &forbidden) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": forbidden.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal_error",
	})
}
