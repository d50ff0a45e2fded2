package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (ctl *Controller) Healthz(c *fiber.Ctx) error {
	if ctl.ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := ctl.ping(ctx); err != nil {
			ctl.log.Error("health check failed", map[string]interface{}{"error": err.Error()})
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
