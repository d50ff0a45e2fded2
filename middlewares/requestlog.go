package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"omnibridge-console/logger"
)

// RequestID returns the id assigned by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// RequestLogger logs one structured line per request after the handler chain ran.
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()

		status := c.Response().StatusCode()
		if chainErr != nil {
			if fe, ok := chainErr.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  RequestID(c),
		}
		if uid := UserID(c); uid != "" {
			fields["user_id"] = uid
		}
		switch {
		case status >= 500:
			log.Error("request", fields)
		case status >= 400:
			log.Warn("request", fields)
		default:
			log.Info("request", fields)
		}
		return chainErr
	}
}
