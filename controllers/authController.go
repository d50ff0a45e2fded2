package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"omnibridge-console/database"
	"omnibridge-console/middlewares"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	var data loginRequest
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := ctl.store.FindUserByEmail(c.UserContext(), data.Email)
	if errors.Is(err, database.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return err
	}
	if err := user.ComparePassword(data.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, expires, err := ctl.tokens.Generate(user.Id, string(user.Role))
	if err != nil {
		return err
	}

	ctl.log.Info("user logged in", map[string]interface{}{"user_id": user.Id})
	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expires,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func (ctl *Controller) Me(c *fiber.Ctx) error {
	user, err := ctl.store.GetUser(c.UserContext(), middlewares.UserID(c))
	if errors.Is(err, database.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
	}
	if err != nil {
		return err
	}
	return c.JSON(user)
}
