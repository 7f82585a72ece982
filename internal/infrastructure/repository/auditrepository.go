package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bizcard/internal/domain/audit"
	"bizcard/internal/infrastructure/persistence/mappers"
	"bizcard/internal/infrastructure/persistence/models"
	"bizcard/internal/shared/db"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(mappers.AuditEntryToModel(entry)).Error; err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByPaymentRecordID(ctx context.Context, paymentRecordID uint) ([]*audit.Entry, error) {
	var ms []models.AuditEntryModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("payment_record_id = ?", paymentRecordID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*audit.Entry, len(ms))
	for i := range ms {
		entries[i] = mappers.AuditEntryToDomain(&ms[i])
	}
	return entries, nil
}
