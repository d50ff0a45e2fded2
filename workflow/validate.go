package workflow

import (
	"strings"
	"time"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// Schedule is the validated, parsed form of the wizard's dates.
type Schedule struct {
	Start       time.Time
	End         time.Time
	BillingDate *time.Time
}

func parseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}

// Validate checks the input in a fixed order and reports the first failure.
func Validate(in CreateSubscriptionInput, now time.Time) (*Schedule, error) {
	start, okStart := parseInstant(in.StartDate)
	end, okEnd := parseInstant(in.EndDate)
	if !okStart || !okEnd {
		return nil, invalid("Invalid start or end date.")
	}
	if !end.After(start) {
		return nil, invalid("End date must be after start date.")
	}
	if len(in.LineItems) == 0 {
		return nil, invalid("At least one price is required.")
	}

	sched := &Schedule{Start: start, End: end}
	switch in.BillingMode {
	case BillingNow:
	case BillingFuture:
		if in.BillingDate == nil || strings.TrimSpace(*in.BillingDate) == "" {
			return nil, invalid("Billing date is required for future billing.")
		}
		billing, ok := parseInstant(*in.BillingDate)
		if !ok {
			return nil, invalid("Invalid billing date.")
		}
		if billing.Before(now.Truncate(time.Second)) {
			return nil, invalid("Billing date must be in the future.")
		}
		if billing.After(end) {
			return nil, invalid("Billing date cannot be after end date.")
		}
		sched.BillingDate = &billing
	default:
		return nil, invalid("Unsupported billing mode.")
	}

	seen := make(map[string]struct{}, len(in.LineItems))
	for i, li := range in.LineItems {
		id := strings.TrimSpace(li.PriceID)
		if id == "" || li.Quantity < 1 {
			return nil, invalid("Invalid line item %d: a price and a quantity of at least 1 are required.", i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, invalid("Duplicate price %s.", id)
		}
		seen[id] = struct{}{}
	}
	return sched, nil
}
