package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var mockPrices = []Price{
	{ID: "price_mock_starter_mo", Nickname: "Starter Monthly", UnitAmount: 2900, Currency: "usd", Interval: "month", ProductName: "Starter Plan", Active: true},
	{ID: "price_mock_starter_yr", Nickname: "Starter Annual", UnitAmount: 29000, Currency: "usd", Interval: "year", ProductName: "Starter Plan", Active: true},
	{ID: "price_mock_pro_mo", Nickname: "Pro Monthly", UnitAmount: 9900, Currency: "usd", Interval: "month", ProductName: "Pro Plan", Active: true},
	{ID: "price_mock_pro_yr", Nickname: "Pro Annual", UnitAmount: 99000, Currency: "usd", Interval: "year", ProductName: "Pro Plan", Active: true},
	{ID: "price_mock_ent_mo", Nickname: "Enterprise Monthly", UnitAmount: 49900, Currency: "usd", Interval: "month", ProductName: "Enterprise Plan", Active: true},
	{ID: "price_mock_ent_yr", Nickname: "Enterprise Annual", UnitAmount: 499000, Currency: "usd", Interval: "year", ProductName: "Enterprise Plan", Active: true},
	{ID: "price_mock_addon_seat", Nickname: "Additional Seat", UnitAmount: 1500, Currency: "usd", Interval: "month", ProductName: "Seat Add-on", Active: true},
}

// MockClient is a deterministic stand-in for Stripe. The same idempotency key
// always yields the same ids, like a replayed provider request.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) CreateSubscriptionSchedule(ctx context.Context, req ScheduleRequest) (*Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Message: err.Error(), Code: "request_cancelled"}
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return nil, errors.New("mock billing: idempotency key is required")
	}
	if len(req.Phases) == 0 || len(req.Phases[0].Items) == 0 {
		return nil, &Error{Message: "Missing required param: phases[0][items].", Code: "parameter_missing", StatusCode: 400}
	}

	suffix := mockSuffix(req.IdempotencyKey)
	return &Schedule{
		ID:             "sub_sched_mock_" + suffix,
		SubscriptionID: "sub_mock_" + suffix,
	}, nil
}

func (m *MockClient) ListPrices(ctx context.Context, query string) ([]Price, error) {
	if query == "" {
		out := make([]Price, len(mockPrices))
		copy(out, mockPrices)
		return out, nil
	}
	q := strings.ToLower(query)
	var out []Price
	for _, p := range mockPrices {
		if strings.Contains(strings.ToLower(p.Nickname), q) ||
			strings.Contains(strings.ToLower(p.ProductName), q) ||
			strings.Contains(p.ID, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func mockSuffix(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:8]
}
