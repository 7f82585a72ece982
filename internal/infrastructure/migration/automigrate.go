package migration

import (
	"bizcard/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PaymentRecordModel{},
		&models.SubscriptionRecordModel{},
		&models.CardPublicationModel{},
		&models.IssuanceRecordModel{},
		&models.AuditEntryModel{},
	}
}
