package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerIndex links a Salesforce account to its Stripe customer.
type CustomerIndex struct {
	Id               string    `json:"id" gorm:"primaryKey;size:36"`
	SfAccountId      string    `json:"sf_account_id" gorm:"size:18;uniqueIndex"`
	SfAccountName    string    `json:"sf_account_name" gorm:"index"`
	StripeCustomerId string    `json:"stripe_customer_id" gorm:"size:64;index"`
	Domain           string    `json:"domain"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (CustomerIndex) TableName() string {
	return "customer_index"
}

func (customer *CustomerIndex) BeforeCreate(tx *gorm.DB) (err error) {
	if customer.Id == "" {
		customer.Id = uuid.NewString()
	}
	return
}
