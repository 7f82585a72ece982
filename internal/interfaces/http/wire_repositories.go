package http

import (
	"gorm.io/gorm"

	"bizcard/internal/infrastructure/repository"
)

// repositories holds all repository instances used by the application.
// Types match the return types of the repository constructors.
type repositories struct {
	paymentRepo      *repository.PaymentRecordRepository
	subscriptionRepo *repository.SubscriptionRecordRepository
	cardRepo         *repository.CardPublicationRepository
	issuanceRepo     *repository.IssuanceRepository
	auditRepo        *repository.AuditRepository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		paymentRepo:      repository.NewPaymentRecordRepository(db),
		subscriptionRepo: repository.NewSubscriptionRecordRepository(db),
		cardRepo:         repository.NewCardPublicationRepository(db),
		issuanceRepo:     repository.NewIssuanceRepository(db),
		auditRepo:        repository.NewAuditRepository(db),
	}
}
