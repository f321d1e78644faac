package controller

import (
	"school-chatbot-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// DocumentCounter reports how many documents are ready for retrieval.
type DocumentCounter interface {
	Len() int
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	documents DocumentCounter
}

func NewHealthController(documents DocumentCounter) IHealthController {
	return &healthController{documents: documents}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:    "ok",
		Documents: c.documents.Len(),
	})
}
