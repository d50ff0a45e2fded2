package controllers

import (
	"github.com/gofiber/fiber/v2"

	"omnibridge-console/billing"
	"omnibridge-console/utils"
)

type priceView struct {
	billing.Price
	Display string `json:"display"`
}

// ListPrices serves the wizard's price picker.
func (ctl *Controller) ListPrices(c *fiber.Ctx) error {
	prices, err := ctl.billing.ListPrices(c.UserContext(), c.Query("q"))
	if err != nil {
		ctl.log.Warn("price listing failed", map[string]interface{}{"error": err.Error()})
		return fiber.NewError(fiber.StatusBadGateway, "billing provider unavailable")
	}

	views := make([]priceView, 0, len(prices))
	for _, p := range prices {
		views = append(views, priceView{Price: p, Display: utils.FormatCurrency(p.UnitAmount, p.Currency) + "/" + p.Interval})
	}
	return c.JSON(views)
}
