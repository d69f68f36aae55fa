package controller

import (
	"errors"

	"agentic-reasoning-be/internal/repository/memory"
	"agentic-reasoning-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError turns domain errors into fiber errors the ErrorHandler can
// answer directly. Anything unknown passes through and becomes a 500.
func mapServiceError(err error) error {
	var uploadErr *service.UploadError
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return fiber.NewError(fiber.StatusBadRequest, "Empty message")
	case errors.As(err, &uploadErr):
		return fiber.NewError(fiber.StatusBadRequest, uploadErr.Reason)
	case errors.Is(err, memory.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrArtifactNotFound):
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}
	return err
}
