package httpio

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/catalog-backend/internal/validation"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Details validation.Errors `json:"details,omitempty"`
}

// Error writes {"error": message} with the given status.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Error: message})
}

// Fail renders validation failures as 422 with per-field details. Any other
// error is logged and answered with a 500 carrying only the generic message.
func Fail(c *fiber.Ctx, err error, message string) error {
	var verr validation.Errors
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(errorResponse{
			Error:   "Validation failed.",
			Details: verr,
		})
	}
	log.Printf("[%s %s] %s: %v", c.Method(), c.Path(), message, err)
	return Error(c, fiber.StatusInternalServerError, message)
}

// ErrorHandler is the app-level fallback for errors returned by handlers and
// middleware, such as unknown routes or oversized bodies.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return Error(c, ferr.Code, ferr.Message)
	}
	log.Printf("[%s %s] unhandled error: %v", c.Method(), c.Path(), err)
	return Error(c, fiber.StatusInternalServerError, "Server Error.")
}
