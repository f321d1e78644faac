package serverutils

import (
	"errors"

	"school-chatbot-be/internal/constant"
	"school-chatbot-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into JSON error bodies.
// Only validation and fiber errors keep their message; anything else is logged
// and replaced by a generic text.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			msg := fiberErr.Message
			if fiberErr.Code >= fiber.StatusInternalServerError {
				msg = constant.ErrMessageInternalError
			}
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(msg))
		}

		log.Error("HTTP", "Unhandled request error", map[string]interface{}{
			"error":  err,
			"path":   ctx.Path(),
			"method": ctx.Method(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(constant.ErrMessageInternalError))
	}
}
