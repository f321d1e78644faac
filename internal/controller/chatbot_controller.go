package controller

import (
	"errors"

	"school-chatbot-be/internal/constant"
	"school-chatbot-be/internal/dto"
	"school-chatbot-be/internal/pkg/serverutils"
	"school-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.SendChat)
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Text() == "" {
		return fiber.NewError(fiber.StatusBadRequest, constant.ErrMessageMissingQuery)
	}

	res, err := c.chatbotService.SendChat(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			return fiber.NewError(fiber.StatusBadRequest, constant.ErrMessageMissingQuery)
		}
		return err
	}

	return ctx.JSON(res)
}
