package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"omnibridge-console/config"
	"omnibridge-console/logger"
	"omnibridge-console/models"
)

// DemoCustomer matches the first account served by the mock CRM client.
var DemoCustomer = models.CustomerIndex{
	SfAccountId:      "001DEMO000000001",
	SfAccountName:    "Acme Corp (Demo)",
	StripeCustomerId: "cus_demo_acme",
	Domain:           "acme.com",
}

// SeedDev upserts the configured admin user and the demo customer.
func SeedDev(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, log logger.Logger) error {
	db = db.WithContext(ctx)

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email != "" && cfg.AdminPassword != "" {
		admin := models.User{Email: email, Name: cfg.AdminName, Role: models.RoleAdmin}
		if err := admin.SetPassword(cfg.AdminPassword); err != nil {
			return err
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "password", "updated_at"}),
		}).Create(&admin).Error; err != nil {
			return err
		}
		log.Info("seeded admin user", map[string]interface{}{"email": email})
	}

	customer := DemoCustomer
	if err := db.Where(models.CustomerIndex{SfAccountId: customer.SfAccountId}).
		Attrs(customer).
		FirstOrCreate(&customer).Error; err != nil {
		return err
	}
	log.Info("seeded demo customer", map[string]interface{}{"customer_id": customer.Id})
	return nil
}
