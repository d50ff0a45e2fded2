package models

import (
	"time"

	"gorm.io/datatypes"
)

type WorkItemStatus string

const (
	WorkItemPending    WorkItemStatus = "pending"
	WorkItemInProgress WorkItemStatus = "in_progress"
	WorkItemCompleted  WorkItemStatus = "completed"
	WorkItemFailed     WorkItemStatus = "failed"
	WorkItemCancelled  WorkItemStatus = "cancelled"
)

const WorkItemTypeCreateSubscription = "create_subscription"

// WorkItem is the durable, append-only record of an action performed through the console.
// IdempotencyKey is duplicated out of the payload so duplicate detection can use an index.
type WorkItem struct {
	ID             string         `json:"id" gorm:"primaryKey;size:36"`
	Type           string         `json:"type" gorm:"size:64;not null;uniqueIndex:idx_work_items_type_customer_key,priority:1"`
	Status         WorkItemStatus `json:"status" gorm:"size:20;not null"`
	CustomerID     string         `json:"customer_id" gorm:"size:36;not null;index;uniqueIndex:idx_work_items_type_customer_key,priority:2"`
	CreatedByID    string         `json:"created_by_id" gorm:"size:36;not null"`
	AssignedToID   *string        `json:"assigned_to_id" gorm:"size:36"`
	IdempotencyKey string         `json:"idempotency_key" gorm:"size:128;uniqueIndex:idx_work_items_type_customer_key,priority:3"`
	PayloadJSON    datatypes.JSON `json:"payload" gorm:"column:payload_json"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
