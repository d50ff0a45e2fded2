package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"omnibridge-console/crm"
	"omnibridge-console/database"
	"omnibridge-console/models"
	"omnibridge-console/utils"
)

// workItemView adds display dates to a work item.
type workItemView struct {
	models.WorkItem
	CreatedOn  string `json:"created_on"`
	CreatedAgo string `json:"created_ago"`
}

func (ctl *Controller) SearchCustomers(c *fiber.Ctx) error {
	customers, err := ctl.store.SearchCustomers(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(customers)
}

func (ctl *Controller) customer(c *fiber.Ctx) (*models.CustomerIndex, error) {
	customer, err := ctl.store.GetCustomer(c.UserContext(), c.Params("id"))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "customer not found")
	}
	return customer, err
}

func (ctl *Controller) GetCustomer(c *fiber.Ctx) error {
	customer, err := ctl.customer(c)
	if err != nil {
		return err
	}
	return c.JSON(customer)
}

func (ctl *Controller) ListWorkItems(c *fiber.Ctx) error {
	customer, err := ctl.customer(c)
	if err != nil {
		return err
	}
	items, err := ctl.store.ListWorkItems(c.UserContext(), customer.Id, utils.ParseIntDefault(c.Query("limit"), 0))
	if err != nil {
		return err
	}

	now := ctl.clock.Now()
	views := make([]workItemView, 0, len(items))
	for _, it := range items {
		views = append(views, workItemView{
			WorkItem:   it,
			CreatedOn:  utils.FormatDate(it.CreatedAt),
			CreatedAgo: utils.FormatRelative(it.CreatedAt, now),
		})
	}
	return c.JSON(views)
}

func (ctl *Controller) ListAuditLogs(c *fiber.Ctx) error {
	customer, err := ctl.customer(c)
	if err != nil {
		return err
	}
	logs, err := ctl.store.ListAuditLogs(c.UserContext(), customer.Id, utils.ParseIntDefault(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(logs)
}

// GetSalesforceAccount shows the CRM account linked to the customer.
func (ctl *Controller) GetSalesforceAccount(c *fiber.Ctx) error {
	customer, err := ctl.customer(c)
	if err != nil {
		return err
	}
	account, err := ctl.crm.GetAccount(c.UserContext(), customer.SfAccountId)
	if errors.Is(err, crm.ErrAccountNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "salesforce account not found")
	}
	if err != nil {
		ctl.log.Warn("salesforce lookup failed", map[string]interface{}{
			"customer_id": customer.Id,
			"error":       err.Error(),
		})
		return fiber.NewError(fiber.StatusBadGateway, "salesforce unavailable")
	}
	return c.JSON(account)
}
