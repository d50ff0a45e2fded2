package database

import (
	"fmt"

	"gorm.io/gorm"

	"omnibridge-console/models"
)

// AutoMigrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Listing indexes for the customer view
// - Status CHECK constraint (PostgreSQL only)
func AutoMigrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.CustomerIndex{},
			&models.IdempotencyKey{},
			&models.WorkItem{},
			&models.AuditLog{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
			`CREATE INDEX IF NOT EXISTS idx_work_items_customer_created ON work_items (customer_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_logs_customer_created ON audit_logs (customer_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_customer_index_name_lower ON customer_index (lower(sf_account_name))`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		check := `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = 'work_items'::regclass
		  AND conname  = 'chk_work_items_status'
	) THEN
		ALTER TABLE work_items
		ADD CONSTRAINT chk_work_items_status
		CHECK (status IN ('pending', 'in_progress', 'completed', 'failed', 'cancelled'));
	END IF;
END $$;`
		if err := tx.Exec(check).Error; err != nil {
			return fmt.Errorf("check constraint migration failed: %w", err)
		}
		return nil
	})
}
