package controller

import (
	"agentic-reasoning-be/internal/dto"
	"agentic-reasoning-be/internal/pkg/serverutils"
	"agentic-reasoning-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReasoningController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
	Capabilities(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type reasoningController struct {
	service service.IReasoningService
}

func NewReasoningController(service service.IReasoningService) IReasoningController {
	return &reasoningController{service: service}
}

func (c *reasoningController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Post("/message", c.SendMessage)
	h.Get("/session/:session_id", c.GetSession)
	h.Delete("/clear_session/:session_id", c.ClearSession)
	h.Get("/capabilities", c.Capabilities)
	h.Get("/status", c.Status)
}

func (c *reasoningController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitMessage(ctx.UserContext(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process message", res))
}

func (c *reasoningController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *reasoningController) ClearSession(ctx *fiber.Ctx) error {
	if err := c.service.ClearSession(ctx.UserContext(), ctx.Params("session_id")); err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session cleared", nil))
}

func (c *reasoningController) Capabilities(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get capabilities", c.service.Capabilities()))
}

func (c *reasoningController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get status", c.service.Status()))
}
