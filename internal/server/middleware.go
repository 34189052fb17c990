package server

import (
	"time"

	"bakery-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

// RequestLogger her isteğe bir id verir ve sonucu loglar.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(CtxRequestIDKey, reqID)

		chainErr := c.Next()
		if chainErr != nil {
			// ErrorHandler durumu yazsın ki log doğru kodu görsün
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		evt := log.Info()
		if status >= fiber.StatusInternalServerError {
			evt = log.Error()
		} else if status >= fiber.StatusBadRequest {
			evt = log.Warn()
		}
		evt.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("HTTP isteği")
		return nil
	}
}
