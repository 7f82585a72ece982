package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bizcard/internal/domain/issuance"
	"bizcard/internal/infrastructure/persistence/models"
	"bizcard/internal/shared/db"
	apperrors "bizcard/internal/shared/errors"
)

type IssuanceRepository struct {
	db *gorm.DB
}

func NewIssuanceRepository(db *gorm.DB) *IssuanceRepository {
	return &IssuanceRepository{db: db}
}

// Claim relies on the unique index on card_id; a duplicate key means another
// caller already owns the issuance unless that claim has outlived the lease.
func (r *IssuanceRepository) Claim(ctx context.Context, cardID uint, issuedAt time.Time, lease time.Duration) (bool, error) {
	model := &models.IssuanceRecordModel{
		CardID:   cardID,
		IssuedAt: issuedAt.UTC(),
	}

	err := db.GetTxFromContext(ctx, r.db).Create(model).Error
	if err == nil {
		return true, nil
	}
	if !apperrors.IsDuplicateError(err) {
		return false, fmt.Errorf("failed to claim issuance: %w", err)
	}
	if lease <= 0 {
		return false, nil
	}

	// Bumping issued_at is the takeover; only one caller can match the old value.
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.IssuanceRecordModel{}).
		Where("card_id = ? AND artifact_ref IS NULL AND issued_at < ?", cardID, issuedAt.UTC().Add(-lease)).
		Update("issued_at", issuedAt.UTC())
	if result.Error != nil {
		return false, fmt.Errorf("failed to reclaim expired issuance: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *IssuanceRepository) SetArtifactRef(ctx context.Context, cardID uint, ref string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.IssuanceRecordModel{}).
		Where("card_id = ?", cardID).
		Update("artifact_ref", ref)

	if result.Error != nil {
		return fmt.Errorf("failed to set artifact ref: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return issuance.ErrIssuanceNotFound
	}

	return nil
}

func (r *IssuanceRepository) Release(ctx context.Context, cardID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("card_id = ? AND artifact_ref IS NULL", cardID).
		Delete(&models.IssuanceRecordModel{}).Error; err != nil {
		return fmt.Errorf("failed to release issuance claim: %w", err)
	}
	return nil
}

func (r *IssuanceRepository) GetByCardID(ctx context.Context, cardID uint) (*issuance.IssuanceRecord, error) {
	var model models.IssuanceRecordModel

	if err := db.GetTxFromContext(ctx, r.db).Where("card_id = ?", cardID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, issuance.ErrIssuanceNotFound
		}
		return nil, fmt.Errorf("failed to get issuance record: %w", err)
	}

	return &issuance.IssuanceRecord{
		ID:          model.ID,
		CardID:      model.CardID,
		IssuedAt:    model.IssuedAt,
		ArtifactRef: model.ArtifactRef,
	}, nil
}
