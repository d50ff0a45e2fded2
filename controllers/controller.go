package controllers

import (
	"context"

	"omnibridge-console/billing"
	"omnibridge-console/crm"
	"omnibridge-console/logger"
	"omnibridge-console/middlewares"
	"omnibridge-console/models"
	"omnibridge-console/utils"
	"omnibridge-console/workflow"
)

// Store is the read side the HTTP handlers need.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	SearchCustomers(ctx context.Context, q string) ([]models.CustomerIndex, error)
	GetCustomer(ctx context.Context, id string) (*models.CustomerIndex, error)
	ListWorkItems(ctx context.Context, customerID string, limit int) ([]models.WorkItem, error)
	ListAuditLogs(ctx context.Context, customerID string, limit int) ([]models.AuditLog, error)
}

type SubscriptionExecutor interface {
	Execute(ctx context.Context, actor workflow.Actor, in workflow.CreateSubscriptionInput) (workflow.CreateSubscriptionResult, error)
}

// Deps are the collaborators handed to New. Clock defaults to the system clock.
type Deps struct {
	Store    Store
	Tokens   *middlewares.Tokens
	Billing  billing.Client
	CRM      crm.Client
	Executor SubscriptionExecutor
	Ping     func(ctx context.Context) error
	Clock    utils.Clock
	Logger   logger.Logger
}

// Controller holds the HTTP handlers.
type Controller struct {
	store    Store
	tokens   *middlewares.Tokens
	billing  billing.Client
	crm      crm.Client
	executor SubscriptionExecutor
	ping     func(ctx context.Context) error
	clock    utils.Clock
	log      logger.Logger
}

func New(d Deps) *Controller {
	if d.Clock == nil {
		d.Clock = utils.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	return &Controller{
		store:    d.Store,
		tokens:   d.Tokens,
		billing:  d.Billing,
		crm:      d.CRM,
		executor: d.Executor,
		ping:     d.Ping,
		clock:    d.Clock,
		log:      d.Logger,
	}
}
