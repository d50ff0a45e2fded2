package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

// PayloadSchemaVersion is stamped on every payload written by this build.
const PayloadSchemaVersion = 1

var ErrPayloadMismatch = errors.New("payload type or schema version mismatch")

// PayloadLineItem mirrors a wizard line item inside a work item payload.
type PayloadLineItem struct {
	PriceID    string `json:"priceId"`
	Nickname   string `json:"nickname"`
	UnitAmount int64  `json:"unitAmount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval"`
	Quantity   int64  `json:"quantity"`
}

// AuditLineItem is the redacted line item kept in the audit trail.
type AuditLineItem struct {
	PriceID  string `json:"priceId"`
	Nickname string `json:"nickname"`
	Quantity int64  `json:"quantity"`
}

// CreateSubscriptionPayload is the work item payload for WorkItemTypeCreateSubscription.
type CreateSubscriptionPayload struct {
	Type                   string            `json:"type"`
	SchemaVersion          int               `json:"schemaVersion"`
	IdempotencyKey         string            `json:"idempotencyKey"`
	RequestHash            string            `json:"requestHash"`
	ProviderScheduleID     string            `json:"stripeScheduleId"`
	ProviderSubscriptionID string            `json:"stripeSubscriptionId"`
	ProviderCustomerID     string            `json:"stripeCustomerId"`
	CustomerName           string            `json:"customerName"`
	LineItems              []PayloadLineItem `json:"lineItems"`
	StartDate              string            `json:"startDate"`
	EndDate                string            `json:"endDate"`
	BillingMode            string            `json:"billingMode"`
	BillingDate            *string           `json:"billingDate"`
}

// SubscriptionCreatedAudit is the audit payload for AuditActionSubscriptionCreated.
// ScheduleParams records exactly what was sent to the billing provider.
type SubscriptionCreatedAudit struct {
	Action                 string          `json:"action"`
	SchemaVersion          int             `json:"schemaVersion"`
	WorkItemID             string          `json:"workItemId"`
	ProviderScheduleID     string          `json:"stripeScheduleId"`
	ProviderSubscriptionID string          `json:"stripeSubscriptionId"`
	ScheduleParams         json.RawMessage `json:"scheduleParams"`
	LineItems              []AuditLineItem `json:"lineItems"`
	StartDate              string          `json:"startDate"`
	EndDate                string          `json:"endDate"`
	BillingMode            string          `json:"billingMode"`
	BillingDate            *string         `json:"billingDate"`
}

// EncodePayload marshals a typed payload into a JSON column value.
func EncodePayload(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return datatypes.JSON(b), nil
}

// DecodeCreateSubscriptionPayload reads a work item payload, rejecting other types and versions.
func DecodeCreateSubscriptionPayload(raw datatypes.JSON) (*CreateSubscriptionPayload, error) {
	var p CreateSubscriptionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode work item payload: %w", err)
	}
	if p.Type != WorkItemTypeCreateSubscription || p.SchemaVersion != PayloadSchemaVersion {
		return nil, fmt.Errorf("%w: got %q v%d", ErrPayloadMismatch, p.Type, p.SchemaVersion)
	}
	return &p, nil
}

// DecodeSubscriptionCreatedAudit reads an audit payload, rejecting other actions and versions.
func DecodeSubscriptionCreatedAudit(raw datatypes.JSON) (*SubscriptionCreatedAudit, error) {
	var p SubscriptionCreatedAudit
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode audit payload: %w", err)
	}
	if p.Action != AuditActionSubscriptionCreated || p.SchemaVersion != PayloadSchemaVersion {
		return nil, fmt.Errorf("%w: got %q v%d", ErrPayloadMismatch, p.Action, p.SchemaVersion)
	}
	return &p, nil
}
