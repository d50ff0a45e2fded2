package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"omnibridge-console/models"
	"omnibridge-console/utils"
	"omnibridge-console/workflow"
)

const (
	maxCustomerResults = 50
	maxWorkItems       = 50
	maxAuditLogs       = 100
	minSearchLength    = 2
)

var ErrNotFound = errors.New("record not found")

// Store is the GORM-backed persistence for the console.
type Store struct {
	db    *gorm.DB
	clock utils.Clock
}

func NewStore(db *gorm.DB, clock utils.Clock) *Store {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Store{db: db, clock: clock}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Reserve inserts a reservation for key. An expired reservation is replaced in the
// same transaction; a live one, or losing the insert race, yields workflow.ErrKeyTaken.
func (s *Store) Reserve(ctx context.Context, key, scope, userID, requestHash string, ttl time.Duration) error {
	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.IdempotencyKey
		err := tx.Where("key = ?", key).Take(&existing).Error
		switch {
		case err == nil:
			if existing.Live(now) {
				return workflow.ErrKeyTaken
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(&models.IdempotencyKey{
			Key:         key,
			Scope:       scope,
			UserID:      userID,
			RequestHash: requestHash,
			ExpiresAt:   now.Add(ttl),
			CreatedAt:   now,
		}).Error
	})
	if isUniqueViolation(err) {
		return workflow.ErrKeyTaken
	}
	return err
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.IdempotencyKey{}).Error
}

// FindCompleted returns the completed work item recorded for key, or nil.
func (s *Store) FindCompleted(ctx context.Context, workItemType, customerID, key string) (*models.WorkItem, error) {
	var item models.WorkItem
	err := s.db.WithContext(ctx).
		Where("type = ? AND customer_id = ? AND idempotency_key = ? AND status = ?",
			workItemType, customerID, key, models.WorkItemCompleted).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) FindAuditLogForWorkItem(ctx context.Context, workItemID string) (*models.AuditLog, error) {
	var audit models.AuditLog
	err := s.db.WithContext(ctx).
		Where("work_item_id = ?", workItemID).
		Order("created_at ASC").
		First(&audit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

// RecordCompletion writes the work item and its audit log together or not at all.
func (s *Store) RecordCompletion(ctx context.Context, item *models.WorkItem, audit *models.AuditLog) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Create(audit).Error
	})
}

// PurgeExpiredKeys deletes reservations that expired before now.
func (s *Store) PurgeExpiredKeys(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.IdempotencyKey{})
	return res.RowsAffected, res.Error
}

// SearchCustomers matches q case-insensitively against name, domain and both external ids.
// Queries shorter than two characters return nothing.
func (s *Store) SearchCustomers(ctx context.Context, q string) ([]models.CustomerIndex, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	customers := []models.CustomerIndex{}
	if len(q) < minSearchLength {
		return customers, nil
	}

	like := "%" + q + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(sf_account_name) LIKE ? OR LOWER(domain) LIKE ? OR LOWER(stripe_customer_id) LIKE ? OR LOWER(sf_account_id) LIKE ?",
			like, like, like, like).
		Order("sf_account_name ASC").
		Limit(maxCustomerResults).
		Find(&customers).Error
	return customers, err
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*models.CustomerIndex, error) {
	var customer models.CustomerIndex
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) ListWorkItems(ctx context.Context, customerID string, limit int) ([]models.WorkItem, error) {
	items := []models.WorkItem{}
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(utils.ClampLimit(limit, maxWorkItems)).
		Find(&items).Error
	return items, err
}

func (s *Store) ListAuditLogs(ctx context.Context, customerID string, limit int) ([]models.AuditLog, error) {
	logs := []models.AuditLog{}
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(utils.ClampLimit(limit, maxAuditLogs)).
		Find(&logs).Error
	return logs, err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
