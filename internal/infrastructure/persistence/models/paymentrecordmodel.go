package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentRecordModel struct {
	ID                     uint    `gorm:"primaryKey"`
	SID                    string  `gorm:"column:sid;uniqueIndex;size:32;not null"`
	OwnerID                uint    `gorm:"index;not null"`
	CardID                 uint    `gorm:"index;not null"`
	Kind                   string  `gorm:"size:40;not null"`
	Method                 string  `gorm:"size:20;not null"`
	AmountMinor            int64   `gorm:"not null"`
	TaxMinor               int64   `gorm:"not null"`
	TotalMinor             int64   `gorm:"not null"`
	Currency               string  `gorm:"size:3;not null"`
	Status                 string  `gorm:"size:20;not null;index"`
	GatewayIntentRef       *string `gorm:"uniqueIndex;size:255"`
	GatewaySubscriptionRef *string `gorm:"size:255"`
	GatewayCustomerRef     *string `gorm:"size:255"`
	SettledVia             *string `gorm:"size:20"`
	PaidAt                 *time.Time
	FailureReason          *string `gorm:"size:500"`
	Metadata               datatypes.JSONMap
	CreatedAt              time.Time `gorm:"index"`
	UpdatedAt              time.Time
}

func (PaymentRecordModel) TableName() string {
	return "payment_records"
}
