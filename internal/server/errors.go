package server

import (
	"errors"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler apperr kodlarını HTTP durumuna çevirir. Detaylar gövdeye eklenir.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if typed := apperr.As(err); typed != nil {
			status := apperr.HTTPStatus(typed.Code())
			if status >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.Path()).Msg("İstek başarısız")
			}
			body := fiber.Map{
				"error": typed.Message(),
				"code":  typed.Code(),
			}
			for k, v := range typed.Details() {
				body[k] = v
			}
			return c.Status(status).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}

		log.Error().Err(err).Str("path", c.Path()).Msg("Beklenmeyen hata")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Beklenmeyen sunucu hatası",
			"code":  apperr.CodeInternal,
		})
	}
}
