package controller

import (
	"errors"

	"agentic-reasoning-be/internal/pkg/serverutils"
	"agentic-reasoning-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBatchController interface {
	RegisterRoutes(r fiber.Router)
	UploadCSV(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
}

type batchController struct {
	service service.IBatchService
}

func NewBatchController(service service.IBatchService) IBatchController {
	return &batchController{service: service}
}

func (c *batchController) RegisterRoutes(r fiber.Router) {
	r.Post("/api/upload_csv", c.UploadCSV)
	r.Get("/download/:filename", c.Download)
}

func (c *batchController) UploadCSV(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		if errors.Is(err, fiber.ErrRequestEntityTooLarge) {
			return err
		}
		file = nil
	}

	res, err := c.service.UploadCSV(ctx.UserContext(), file)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process CSV file", res))
}

func (c *batchController) Download(ctx *fiber.Ctx) error {
	path, err := c.service.ArtifactPath(ctx.Params("filename"))
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.Download(path)
}
