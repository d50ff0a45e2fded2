// Package workflow executes console workflows that touch external systems exactly once per
// idempotency key: guard, validate, call the provider, then persist the work item and audit log.
package workflow

type BillingMode string

const (
	BillingNow    BillingMode = "now"
	BillingFuture BillingMode = "future"
)

// Actor is the authenticated user performing the workflow.
type Actor struct {
	UserID    string
	RequestID string
}

type LineItem struct {
	PriceID    string `json:"priceId"`
	Nickname   string `json:"nickname"`
	UnitAmount int64  `json:"unitAmount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval"`
	Quantity   int64  `json:"quantity"`
}

// CreateSubscriptionInput is what the subscription wizard submits.
// Dates are ISO 8601 instants; BillingDate is required when BillingMode is future.
type CreateSubscriptionInput struct {
	CustomerID                string      `json:"customerId" validate:"required"`
	BillingProviderCustomerID string      `json:"stripeCustomerId" validate:"required"`
	CustomerName              string      `json:"customerName"`
	LineItems                 []LineItem  `json:"lineItems"`
	StartDate                 string      `json:"startDate"`
	EndDate                   string      `json:"endDate"`
	BillingMode               BillingMode `json:"billingMode"`
	BillingDate               *string     `json:"billingDate,omitempty"`
	IdempotencyKey            string      `json:"idempotencyKey" validate:"max=128"`
}

// CreateSubscriptionResult is either a success with all four ids or a failure with Error set.
type CreateSubscriptionResult struct {
	Success                bool   `json:"success"`
	Error                  string `json:"error,omitempty"`
	ErrorKind              Kind   `json:"errorKind,omitempty"`
	WorkItemID             string `json:"workItemId,omitempty"`
	ProviderScheduleID     string `json:"stripeScheduleId,omitempty"`
	ProviderSubscriptionID string `json:"stripeSubscriptionId,omitempty"`
	AuditLogID             string `json:"auditLogId,omitempty"`
}
