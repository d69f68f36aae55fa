package serverutils

import (
	"errors"

	"agentic-reasoning-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler builds the fiber.Config ErrorHandler. Controllers answer
// expected failures themselves; whatever reaches here is mapped to a status and
// internal details never leave the process.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validationErr.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			switch fiberErr.Code {
			case fiber.StatusRequestEntityTooLarge:
				return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, "File too large"))
			case fiber.StatusInternalServerError:
				// fall through to the generic handler below
			default:
				return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
			}
		}

		log.Error("ErrorHandler", "Unhandled request error", map[string]interface{}{
			"error":  err.Error(),
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
