package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditActionSubscriptionCreated  = "subscription.created"
	AuditTargetSubscriptionSchedule = "stripe_subscription_schedule"
)

// AuditLog is an immutable trail entry, written only after the side effect it describes succeeded.
type AuditLog struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	ActorUserID string         `json:"actor_user_id" gorm:"size:36;not null;index"`
	Action      string         `json:"action" gorm:"size:64;not null"`
	TargetType  string         `json:"target_type" gorm:"size:64"`
	TargetID    string         `json:"target_id" gorm:"size:128"`
	RequestID   string         `json:"request_id" gorm:"size:36"`
	CustomerID  string         `json:"customer_id" gorm:"size:36;index"`
	WorkItemID  *string        `json:"work_item_id" gorm:"size:36;index"`
	PayloadJSON datatypes.JSON `json:"payload" gorm:"column:payload_json"`
	CreatedAt   time.Time      `json:"created_at"`
}
