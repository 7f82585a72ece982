package models

import "time"

type IssuanceRecordModel struct {
	ID          uint      `gorm:"primaryKey"`
	CardID      uint      `gorm:"uniqueIndex;not null"`
	IssuedAt    time.Time `gorm:"not null"`
	ArtifactRef *string   `gorm:"size:512"`
	CreatedAt   time.Time
}

func (IssuanceRecordModel) TableName() string {
	return "issuance_records"
}
