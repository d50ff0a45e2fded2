package crm

import (
	"context"
	"strings"
)

var mockAccounts = []Account{
	{ID: "001DEMO000000001", Name: "Acme Corp (Demo)", Website: "https://acme.com", BillingCity: "San Francisco", BillingState: "CA", BillingCountry: "US", Industry: "Technology", Type: "Customer"},
	{ID: "001DEMO000000002", Name: "Globex Corporation", Website: "https://globex.com", BillingCity: "Springfield", BillingState: "OR", BillingCountry: "US", Industry: "Manufacturing", Type: "Customer"},
	{ID: "001DEMO000000003", Name: "Initech", Website: "https://initech.com", BillingCity: "Austin", BillingState: "TX", BillingCountry: "US", Industry: "Software", Type: "Prospect"},
}

// MockClient serves a fixed set of accounts; unknown ids get a synthesized account.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrAccountNotFound
	}
	for _, a := range mockAccounts {
		if a.ID == accountID {
			acc := a
			return &acc, nil
		}
	}
	return &Account{
		ID:             accountID,
		Name:           "Mock Account " + accountID,
		BillingCountry: "US",
		Type:           "Customer",
	}, nil
}

func (m *MockClient) SearchAccounts(ctx context.Context, term string) ([]Account, error) {
	t := strings.ToLower(term)
	var out []Account
	for _, a := range mockAccounts {
		if strings.Contains(strings.ToLower(a.Name), t) {
			out = append(out, a)
		}
	}
	return out, nil
}
