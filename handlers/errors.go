package handlers

import (
	"errors"

	"learning-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

// errorJSON maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a datastore/collaborator failure and comes back 500.
func errorJSON(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrNotClaimable):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrNoEligibleTemplate):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
