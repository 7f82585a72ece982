package models

import "time"

type AuditEntryModel struct {
	ID              string    `gorm:"primaryKey;size:36"`
	Actor           string    `gorm:"size:128;not null"`
	Action          string    `gorm:"size:64;not null"`
	PaymentRecordID uint      `gorm:"index;not null"`
	FromStatus      string    `gorm:"size:20;not null"`
	ToStatus        string    `gorm:"size:20;not null"`
	Result          string    `gorm:"size:20;not null"`
	Reason          string    `gorm:"size:500"`
	CreatedAt       time.Time `gorm:"index"`
}

func (AuditEntryModel) TableName() string {
	return "payment_audit_entries"
}
