package workflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"omnibridge-console/billing"
	"omnibridge-console/models"
)

var t0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct{ n int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("id-%d", atomic.AddInt64(&s.n, 1)) }

type memStore struct {
	mu        sync.Mutex
	now       func() time.Time
	keys      map[string]models.IdempotencyKey
	items     []*models.WorkItem
	audits    []*models.AuditLog
	recordErr error
	findErr   error
}

func newMemStore(now time.Time) *memStore {
	return &memStore{now: func() time.Time { return now }, keys: map[string]models.IdempotencyKey{}}
}

func (s *memStore) Reserve(_ context.Context, key, scope, userID, requestHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.keys[key]; ok && existing.Live(now) {
		return ErrKeyTaken
	}
	s.keys[key] = models.IdempotencyKey{Key: key, Scope: scope, UserID: userID, RequestHash: requestHash, ExpiresAt: now.Add(ttl), CreatedAt: now}
	return nil
}

func (s *memStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memStore) FindCompleted(_ context.Context, workItemType, customerID, key string) (*models.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, it := range s.items {
		if it.Type == workItemType && it.CustomerID == customerID && it.IdempotencyKey == key && it.Status == models.WorkItemCompleted {
			return it, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindAuditLogForWorkItem(_ context.Context, workItemID string) (*models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.audits {
		if a.WorkItemID != nil && *a.WorkItemID == workItemID {
			return a, nil
		}
	}
	return nil, nil
}

func (s *memStore) RecordCompletion(_ context.Context, item *models.WorkItem, audit *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.items = append(s.items, item)
	s.audits = append(s.audits, audit)
	return nil
}

func (s *memStore) hasKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// fakeBilling wraps the deterministic mock and records what it was sent.
type fakeBilling struct {
	*billing.MockClient
	mu    sync.Mutex
	reqs  []billing.ScheduleRequest
	fail  error
	delay time.Duration
}

func newFakeBilling() *fakeBilling {
	return &fakeBilling{MockClient: billing.NewMockClient()}
}

func (f *fakeBilling) CreateSubscriptionSchedule(ctx context.Context, req billing.ScheduleRequest) (*billing.Schedule, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	err := f.fail
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err != nil {
		return nil, err
	}
	return f.MockClient.CreateSubscriptionSchedule(ctx, req)
}

func (f *fakeBilling) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *fakeBilling) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

type outcomes struct {
	mu   sync.Mutex
	seen []string
}

func (o *outcomes) Observe(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, outcome)
}
