package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"omnibridge-console/logger"
	"omnibridge-console/models"
)

// Store is the persistence the executor needs. Reserve must be atomic per key.
type Store interface {
	Reserve(ctx context.Context, key, scope, userID, requestHash string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	FindCompleted(ctx context.Context, workItemType, customerID, key string) (*models.WorkItem, error)
	FindAuditLogForWorkItem(ctx context.Context, workItemID string) (*models.AuditLog, error)
	RecordCompletion(ctx context.Context, item *models.WorkItem, audit *models.AuditLog) error
}

// Guard enforces at most one completed execution per idempotency key.
type Guard struct {
	store Store
	scope string
	ttl   time.Duration
	log   logger.Logger
}

func NewGuard(store Store, scope string, ttl time.Duration, log logger.Logger) *Guard {
	return &Guard{store: store, scope: scope, ttl: ttl, log: log}
}

// Lookup returns the completed work item for key, or nil. A completed item always wins,
// even when the retry's fingerprint differs from the recorded one.
func (g *Guard) Lookup(ctx context.Context, customerID, key, requestHash string) (*models.WorkItem, *models.CreateSubscriptionPayload, error) {
	item, err := g.store.FindCompleted(ctx, g.scope, customerID, key)
	if err != nil {
		return nil, nil, &PersistenceError{Err: err}
	}
	if item == nil {
		return nil, nil, nil
	}

	payload, err := models.DecodeCreateSubscriptionPayload(item.PayloadJSON)
	if err != nil {
		return nil, nil, &PersistenceError{Err: err}
	}
	if payload.RequestHash != "" && payload.RequestHash != requestHash {
		g.log.Warn("idempotency key replayed with a different request", map[string]interface{}{
			"key":          key,
			"work_item_id": item.ID,
		})
	}
	return item, payload, nil
}

// Reserve claims key for the current request. A live reservation maps to ErrConflict.
func (g *Guard) Reserve(ctx context.Context, key, userID, requestHash string) error {
	err := g.store.Reserve(ctx, key, g.scope, userID, requestHash, g.ttl)
	if errors.Is(err, ErrKeyTaken) {
		return ErrConflict
	}
	if err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// Release drops the reservation so a corrected retry can proceed. Failures only delay
// that until the reservation expires.
func (g *Guard) Release(ctx context.Context, key string) {
	if err := g.store.Release(ctx, key); err != nil {
		g.log.Warn("failed to release idempotency key", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Fingerprint hashes everything in the input except the key itself.
func Fingerprint(in CreateSubscriptionInput) string {
	in.IdempotencyKey = ""
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
