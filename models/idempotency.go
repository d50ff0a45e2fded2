package models

import "time"

// IdempotencyKey reserves a client-supplied key for one logical operation.
// At most one row per key; an expired row may be replaced by a new reservation.
type IdempotencyKey struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Key         string    `json:"key" gorm:"size:128;uniqueIndex"`
	Scope       string    `json:"scope" gorm:"size:64;not null"`
	UserID      string    `json:"user_id" gorm:"size:36"`
	RequestHash string    `json:"request_hash" gorm:"size:64"` // sha256 of the canonical request
	ExpiresAt   time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// Live reports whether the reservation still blocks other requests at now.
func (k IdempotencyKey) Live(now time.Time) bool {
	return now.Before(k.ExpiresAt)
}
