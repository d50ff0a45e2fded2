package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	maxIdempotencyKey = 128

	localIdempotencyKey = "idempotencyKey"
)

// Idempotency reads the Idempotency-Key header on mutating requests and exposes it via
// IdempotencyKey. Deduplication itself happens in the workflow layer.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(IdempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKey {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		c.Locals(localIdempotencyKey, key)
		return c.Next()
	}
}

// IdempotencyKey returns the header key accepted by Idempotency, or "".
func IdempotencyKey(c *fiber.Ctx) string {
	key, _ := c.Locals(localIdempotencyKey).(string)
	return key
}
