// Package crm reads account data from Salesforce for the customer view.
package crm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"omnibridge-console/config"
	"omnibridge-console/logger"
)

var ErrAccountNotFound = errors.New("salesforce account not found")

// Account is the subset of the Salesforce Account object the console shows.
type Account struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	Website        string `json:"Website,omitempty"`
	BillingCity    string `json:"BillingCity,omitempty"`
	BillingState   string `json:"BillingState,omitempty"`
	BillingCountry string `json:"BillingCountry,omitempty"`
	Industry       string `json:"Industry,omitempty"`
	Type           string `json:"Type,omitempty"`
}

type Client interface {
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	SearchAccounts(ctx context.Context, term string) ([]Account, error)
}

// NewClient selects the live Salesforce client or the mock from configuration.
func NewClient(cfg config.SalesforceConfig, log logger.Logger) (Client, error) {
	if cfg.Mock() {
		log.Info("crm: using mock Salesforce", nil)
		return NewMockClient(), nil
	}
	log.Info("crm: using Salesforce", map[string]interface{}{"login_url": cfg.LoginURL})
	return NewSalesforceClient(cfg, &http.Client{Timeout: 30 * time.Second})
}
