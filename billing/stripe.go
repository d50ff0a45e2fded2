package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"omnibridge-console/logger"
	"omnibridge-console/metrics"
)

const maxListedPrices = 50

// StripeClient talks to the live Stripe API through stripe-go.
type StripeClient struct {
	api *client.API
	log logger.Logger
}

func NewStripeClient(secretKey string, log logger.Logger) *StripeClient {
	return &StripeClient{
		api: client.New(secretKey, nil),
		log: log.WithFields(map[string]interface{}{"provider": "stripe"}),
	}
}

func (s *StripeClient) CreateSubscriptionSchedule(ctx context.Context, req ScheduleRequest) (*Schedule, error) {
	params := scheduleParams(req)
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	schedule, err := s.api.SubscriptionSchedules.New(params)
	metrics.ProviderCalls.WithLabelValues("stripe", "create_subscription_schedule", metrics.ProviderResult(err)).Inc()
	if err != nil {
		s.log.Warn("create subscription schedule failed", map[string]interface{}{
			"customer": req.CustomerRef,
			"error":    err.Error(),
		})
		return nil, toBillingError(err)
	}

	out := &Schedule{ID: schedule.ID}
	if schedule.Subscription != nil {
		out.SubscriptionID = schedule.Subscription.ID
	}
	return out, nil
}

// scheduleParams builds one-phase schedule parameters. The phase start is implied by the
// schedule start date; a trial end on the phase defers the first invoice.
func scheduleParams(req ScheduleRequest) *stripe.SubscriptionScheduleParams {
	params := &stripe.SubscriptionScheduleParams{
		Customer:    stripe.String(req.CustomerRef),
		StartDate:   stripe.Int64(req.StartDate.Unix()),
		EndBehavior: stripe.String(req.EndBehavior),
	}
	for _, ph := range req.Phases {
		phase := &stripe.SubscriptionSchedulePhaseParams{
			EndDate:           stripe.Int64(ph.EndDate.Unix()),
			ProrationBehavior: stripe.String(ph.ProrationBehavior),
		}
		for _, it := range ph.Items {
			phase.Items = append(phase.Items, &stripe.SubscriptionSchedulePhaseItemParams{
				Price:    stripe.String(it.PriceID),
				Quantity: stripe.Int64(it.Quantity),
			})
		}
		if ph.TrialEnd != nil {
			phase.TrialEnd = stripe.Int64(ph.TrialEnd.Unix())
		}
		params.Phases = append(params.Phases, phase)
	}
	return params
}

func (s *StripeClient) ListPrices(ctx context.Context, query string) ([]Price, error) {
	params := &stripe.PriceListParams{Active: stripe.Bool(true)}
	params.Context = ctx
	params.Limit = stripe.Int64(maxListedPrices)
	params.AddExpand("data.product")
	if query != "" {
		params.LookupKeys = stripe.StringSlice([]string{query})
	}

	var out []Price
	iter := s.api.Prices.List(params)
	for iter.Next() && len(out) < maxListedPrices {
		p := iter.Price()
		if p.Recurring == nil {
			continue
		}
		productName := "—"
		if p.Product != nil && p.Product.Name != "" {
			productName = p.Product.Name
		}
		nickname := p.Nickname
		if nickname == "" {
			nickname = productName
		}
		out = append(out, Price{
			ID:          p.ID,
			Nickname:    nickname,
			UnitAmount:  p.UnitAmount,
			Currency:    string(p.Currency),
			Interval:    string(p.Recurring.Interval),
			ProductName: productName,
			Active:      p.Active,
		})
	}
	err := iter.Err()
	metrics.ProviderCalls.WithLabelValues("stripe", "list_prices", metrics.ProviderResult(err)).Inc()
	if err != nil {
		return nil, toBillingError(err)
	}
	return out, nil
}

func toBillingError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		msg := se.Msg
		if msg == "" {
			msg = "Stripe API error"
		}
		return &Error{Message: msg, Code: string(se.Code), StatusCode: se.HTTPStatusCode}
	}
	return &Error{Message: err.Error()}
}
