package models

import "time"

// CardPublicationModel holds only the publication columns of a card.
type CardPublicationModel struct {
	CardID        uint   `gorm:"primaryKey;autoIncrement:false"`
	OwnerID       uint   `gorm:"index;not null"`
	ContactEmail  string `gorm:"size:255"`
	PaymentStatus string `gorm:"size:20;not null;default:'unpaid'"`
	IsPublished   bool   `gorm:"not null;default:false"`
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (CardPublicationModel) TableName() string {
	return "card_publications"
}
