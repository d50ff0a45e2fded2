// Package billing is the console's boundary to the billing provider (Stripe).
// Callers depend on Client only; NewClient picks the live or mock variant once.
package billing

import (
	"context"
	"fmt"
	"time"

	"omnibridge-console/config"
	"omnibridge-console/logger"
)

const (
	EndBehaviorCancel = "cancel"

	ProrationNone = "none"
)

// PhaseItem is one price at a quantity inside a schedule phase.
type PhaseItem struct {
	PriceID  string `json:"price"`
	Quantity int64  `json:"quantity"`
}

// Phase covers [StartDate, EndDate]. TrialEnd delays the first charge.
type Phase struct {
	StartDate         time.Time   `json:"start_date"`
	EndDate           time.Time   `json:"end_date"`
	Items             []PhaseItem `json:"items"`
	ProrationBehavior string      `json:"proration_behavior"`
	TrialEnd          *time.Time  `json:"trial_end,omitempty"`
}

// ScheduleRequest asks the provider for a subscription schedule.
// IdempotencyKey is forwarded to the provider's own idempotency mechanism.
type ScheduleRequest struct {
	CustomerRef    string    `json:"customer"`
	StartDate      time.Time `json:"start_date"`
	EndBehavior    string    `json:"end_behavior"`
	Phases         []Phase   `json:"phases"`
	IdempotencyKey string    `json:"-"`
}

// Schedule identifies what the provider created. SubscriptionID may be empty
// when the schedule starts in the future.
type Schedule struct {
	ID             string
	SubscriptionID string
}

// Price is a recurring catalog price offered by the wizard.
type Price struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	UnitAmount  int64  `json:"unitAmount"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
	ProductName string `json:"productName"`
	Active      bool   `json:"active"`
}

type Client interface {
	CreateSubscriptionSchedule(ctx context.Context, req ScheduleRequest) (*Schedule, error)
	ListPrices(ctx context.Context, query string) ([]Price, error)
}

// Error is a provider rejection or transport failure, carrying a human-readable message.
type Error struct {
	Message    string
	Code       string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("billing provider error [%s]: %s", e.Code, e.Message)
	}
	return "billing provider error: " + e.Message
}

// NewClient selects the live Stripe client or the deterministic mock from configuration.
func NewClient(cfg config.StripeConfig, log logger.Logger) Client {
	if cfg.Mock() {
		log.Info("billing provider: using deterministic mock", nil)
		return NewMockClient()
	}
	log.Info("billing provider: using Stripe", nil)
	return NewStripeClient(cfg.SecretKey, log)
}
