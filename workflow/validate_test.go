package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validInput() CreateSubscriptionInput {
	return CreateSubscriptionInput{
		CustomerID:                "cust-1",
		BillingProviderCustomerID: "cus_123",
		CustomerName:              "Acme Corp (Demo)",
		LineItems: []LineItem{{
			PriceID: "p1", Nickname: "Pro Monthly", UnitAmount: 2900, Currency: "usd", Interval: "month", Quantity: 1,
		}},
		StartDate:      t0.Format(time.RFC3339),
		EndDate:        t0.AddDate(0, 0, 365).Format(time.RFC3339),
		BillingMode:    BillingNow,
		IdempotencyKey: "k1",
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateSubscriptionInput)
		want   string
	}{
		{"unparseable start", func(in *CreateSubscriptionInput) { in.StartDate = "soon" }, "Invalid start or end date."},
		{"missing end", func(in *CreateSubscriptionInput) { in.EndDate = "" }, "Invalid start or end date."},
		{"end equals start", func(in *CreateSubscriptionInput) { in.EndDate = in.StartDate }, "End date must be after start date."},
		{"window shorter than a second", func(in *CreateSubscriptionInput) {
			in.StartDate = t0.Add(100 * time.Millisecond).Format(time.RFC3339Nano)
			in.EndDate = t0.Add(600 * time.Millisecond).Format(time.RFC3339Nano)
		}, "End date must be after start date."},
		{"end before start wins over empty items", func(in *CreateSubscriptionInput) {
			in.EndDate = t0.AddDate(0, 0, -1).Format(time.RFC3339)
			in.LineItems = nil
		}, "End date must be after start date."},
		{"no line items", func(in *CreateSubscriptionInput) { in.LineItems = nil }, "At least one price is required."},
		{"future without date", func(in *CreateSubscriptionInput) { in.BillingMode = BillingFuture }, "Billing date is required for future billing."},
		{"future with bad date", func(in *CreateSubscriptionInput) {
			in.BillingMode = BillingFuture
			in.BillingDate = strPtr("next week")
		}, "Invalid billing date."},
		{"future in the past", func(in *CreateSubscriptionInput) {
			in.BillingMode = BillingFuture
			in.BillingDate = strPtr(t0.Add(-time.Hour).Format(time.RFC3339))
		}, "Billing date must be in the future."},
		{"future after end", func(in *CreateSubscriptionInput) {
			in.BillingMode = BillingFuture
			in.BillingDate = strPtr(t0.AddDate(0, 0, 366).Format(time.RFC3339))
		}, "Billing date cannot be after end date."},
		{"unknown mode", func(in *CreateSubscriptionInput) { in.BillingMode = "later" }, "Unsupported billing mode."},
		{"zero quantity", func(in *CreateSubscriptionInput) { in.LineItems[0].Quantity = 0 }, "Invalid line item 1: a price and a quantity of at least 1 are required."},
		{"duplicate price", func(in *CreateSubscriptionInput) {
			in.LineItems = append(in.LineItems, LineItem{PriceID: "p1", Quantity: 2})
		}, "Duplicate price p1."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := Validate(in, t0)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.want, ve.Message)
		})
	}
}

func TestValidate_BillingDateBounds(t *testing.T) {
	end := t0.AddDate(0, 0, 365)
	for _, bill := range []time.Time{t0, t0.AddDate(0, 0, 10), end} {
		in := validInput()
		in.BillingMode = BillingFuture
		in.BillingDate = strPtr(bill.Format(time.RFC3339))

		sched, err := Validate(in, t0.Add(500 * time.Millisecond))
		require.NoError(t, err, bill)
		require.NotNil(t, sched.BillingDate)
		assert.True(t, sched.BillingDate.Equal(bill))
	}
}

func TestValidate_NowModeIgnoresBillingDate(t *testing.T) {
	in := validInput()
	in.BillingDate = strPtr("garbage")

	sched, err := Validate(in, t0)
	require.NoError(t, err)
	assert.Nil(t, sched.BillingDate)
}

func TestValidate_DateLayouts(t *testing.T) {
	in := validInput()
	in.StartDate = "2026-03-01"
	in.EndDate = "2027-03-01T00:00:00.000Z"

	sched, err := Validate(in, t0)
	require.NoError(t, err)
	assert.True(t, sched.Start.Equal(t0))
	assert.Equal(t, 2027, sched.End.Year())
}
