package models

import "time"

type SubscriptionRecordModel struct {
	ID                     uint    `gorm:"primaryKey"`
	OwnerID                uint    `gorm:"index;not null"`
	CardID                 uint    `gorm:"uniqueIndex;not null"`
	GatewaySubscriptionRef string  `gorm:"uniqueIndex;size:255;not null"`
	GatewayCustomerRef     *string `gorm:"size:255"`
	Status                 string  `gorm:"size:20;not null"`
	NextBillingAt          *time.Time
	CancelledAt            *time.Time
	LastEventAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (SubscriptionRecordModel) TableName() string {
	return "subscription_records"
}
