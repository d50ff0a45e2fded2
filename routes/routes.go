package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"omnibridge-console/controllers"
	"omnibridge-console/middlewares"
	"omnibridge-console/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, ctl *controllers.Controller, tokens *middlewares.Tokens) {
	app.Get("/healthz", ctl.Healthz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Public auth endpoint
	api.Post("/login", ctl.Login)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader(tokens))
	protected.Use(middlewares.Idempotency())

	protected.Get("/me", ctl.Me)

	// Customers
	protected.Get("/customers", ctl.SearchCustomers)
	protected.Get("/customers/:id", ctl.GetCustomer)
	protected.Get("/customers/:id/work-items", ctl.ListWorkItems)
	protected.Get("/customers/:id/audit-logs", ctl.ListAuditLogs)
	protected.Get("/customers/:id/salesforce", ctl.GetSalesforceAccount)

	// Billing catalog
	protected.Get("/prices", ctl.ListPrices)

	// Workflows
	// Viewers may browse but not change billing.
	canWrite := middlewares.RequireRole(string(models.RoleAdmin), string(models.RoleSupport))
	protected.Post("/workflows/create-subscription", canWrite, ctl.CreateSubscription)
}
