package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"omnibridge-console/middlewares"
	"omnibridge-console/workflow"
)

// CreateSubscription runs the create-subscription workflow. The body's idempotencyKey
// wins over the Idempotency-Key header.
func (ctl *Controller) CreateSubscription(c *fiber.Ctx) error {
	var in workflow.CreateSubscriptionInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = middlewares.IdempotencyKey(c)
	}

	actor := workflow.Actor{UserID: middlewares.UserID(c), RequestID: middlewares.RequestID(c)}
	res, err := ctl.executor.Execute(c.UserContext(), actor, in)
	if errors.Is(err, workflow.ErrUnauthorized) {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	if err != nil {
		return err
	}
	return c.Status(statusFor(res)).JSON(res)
}

func statusFor(res workflow.CreateSubscriptionResult) int {
	if res.Success {
		return fiber.StatusOK
	}
	switch res.ErrorKind {
	case workflow.KindConflict:
		return fiber.StatusConflict
	case workflow.KindValidation:
		return fiber.StatusUnprocessableEntity
	case workflow.KindProvider:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
