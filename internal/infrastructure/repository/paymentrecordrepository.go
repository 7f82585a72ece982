package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/infrastructure/persistence/mappers"
	"bizcard/internal/infrastructure/persistence/models"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/db"
	apperrors "bizcard/internal/shared/errors"
)

type PaymentRecordRepository struct {
	db *gorm.DB
}

func NewPaymentRecordRepository(db *gorm.DB) *PaymentRecordRepository {
	return &PaymentRecordRepository{db: db}
}

func (r *PaymentRecordRepository) Create(ctx context.Context, p *payment.PaymentRecord) error {
	model := mappers.PaymentRecordToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	p.SetID(model.ID)

	return nil
}

func (r *PaymentRecordRepository) GetByID(ctx context.Context, id uint) (*payment.PaymentRecord, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PaymentRecordRepository) GetBySID(ctx context.Context, sid string) (*payment.PaymentRecord, error) {
	return r.first(ctx, "sid = ?", sid)
}

func (r *PaymentRecordRepository) GetByGatewayIntentRef(ctx context.Context, ref string) (*payment.PaymentRecord, error) {
	return r.first(ctx, "gateway_intent_ref = ?", ref)
}

func (r *PaymentRecordRepository) first(ctx context.Context, query string, arg interface{}) (*payment.PaymentRecord, error) {
	var model models.PaymentRecordModel

	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment record: %w", err)
	}

	return mappers.PaymentRecordToDomain(&model)
}

func (r *PaymentRecordRepository) ListByCardID(ctx context.Context, cardID uint) ([]*payment.PaymentRecord, error) {
	var ms []models.PaymentRecordModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("card_id = ?", cardID).
		Order("created_at ASC, id ASC").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment records by card_id: %w", err)
	}

	return mappers.PaymentRecordsToDomain(ms)
}

func (r *PaymentRecordRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*payment.PaymentRecord, error) {
	var ms []models.PaymentRecordModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND gateway_intent_ref IS NOT NULL AND created_at < ?", vo.PaymentStatusPending, olderThan.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list stale pending payment records: %w", err)
	}

	return mappers.PaymentRecordsToDomain(ms)
}

func (r *PaymentRecordRepository) ListCompletedUnfinished(ctx context.Context, olderThan time.Time, limit int) ([]*payment.PaymentRecord, error) {
	var ms []models.PaymentRecordModel

	unissued := "NOT EXISTS (SELECT 1 FROM issuance_records WHERE issuance_records.card_id = payment_records.card_id AND issuance_records.artifact_ref IS NOT NULL)"
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND paid_at < ?", vo.PaymentStatusCompleted, olderThan.UTC()).
		Where(r.db.Where(unissued).Or("kind = ? AND gateway_subscription_ref IS NULL", vo.PaymentKindNewSubscriberInitial)).
		Order("paid_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list unfinished completed payment records: %w", err)
	}

	return mappers.PaymentRecordsToDomain(ms)
}

func (r *PaymentRecordRepository) AttachIntentRef(ctx context.Context, id uint, ref string) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentRecordModel{}).
		Where("id = ? AND gateway_intent_ref IS NULL", id).
		Updates(map[string]interface{}{
			"gateway_intent_ref": ref,
			"updated_at":         biztime.NowUTC(),
		})

	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return false, payment.ErrIntentAlreadyBound
		}
		return false, fmt.Errorf("failed to attach gateway intent: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *PaymentRecordRepository) SetCustomerRef(ctx context.Context, id uint, ref string) error {
	return r.setColumn(ctx, id, "gateway_customer_ref", ref)
}

func (r *PaymentRecordRepository) SetSubscriptionRef(ctx context.Context, id uint, ref string) error {
	return r.setColumn(ctx, id, "gateway_subscription_ref", ref)
}

func (r *PaymentRecordRepository) setColumn(ctx context.Context, id uint, column, value string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentRecordModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       value,
			"updated_at": biztime.NowUTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}

// CompleteIfPending is the only write that sets paid_at. It matches the row
// only while it is pending, so concurrent callers settle on one winner.
func (r *PaymentRecordRepository) CompleteIfPending(ctx context.Context, id uint, via vo.SettlementChannel, paidAt time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentRecordModel{}).
		Where("id = ? AND status = ?", id, vo.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":      vo.PaymentStatusCompleted.String(),
			"paid_at":     paidAt.UTC(),
			"settled_via": via.String(),
			"updated_at":  biztime.NowUTC(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to complete payment record: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *PaymentRecordRepository) FailIfPending(ctx context.Context, id uint, reason string) (bool, error) {
	updates := map[string]interface{}{
		"status":     vo.PaymentStatusFailed.String(),
		"updated_at": biztime.NowUTC(),
	}
	if reason != "" {
		updates["failure_reason"] = truncate(reason, 500)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentRecordModel{}).
		Where("id = ? AND status = ?", id, vo.PaymentStatusPending).
		Updates(updates)

	if result.Error != nil {
		return false, fmt.Errorf("failed to fail payment record: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
