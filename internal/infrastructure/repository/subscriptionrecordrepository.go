package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizcard/internal/domain/subscription"
	"bizcard/internal/infrastructure/persistence/mappers"
	"bizcard/internal/infrastructure/persistence/models"
	"bizcard/internal/shared/db"
)

type SubscriptionRecordRepository struct {
	db *gorm.DB
}

func NewSubscriptionRecordRepository(db *gorm.DB) *SubscriptionRecordRepository {
	return &SubscriptionRecordRepository{db: db}
}

func (r *SubscriptionRecordRepository) Upsert(ctx context.Context, s *subscription.SubscriptionRecord) error {
	model := mappers.SubscriptionRecordToModel(s)
	model.ID = 0
	tx := db.GetTxFromContext(ctx, r.db)

	columns, err := r.upsertColumns(tx, model)
	if err != nil {
		return err
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription record: %w", err)
	}

	// The returned ID is unreliable on the update path for some drivers.
	var stored models.SubscriptionRecordModel
	if err := tx.Select("id").Where("card_id = ?", model.CardID).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload subscription record: %w", err)
	}
	s.SetID(stored.ID)

	return nil
}

// upsertColumns picks the columns an upsert may overwrite. A record that has
// seen no gateway event must not clobber lifecycle state that events already
// stored for the same subscription; a different subscription replaces it.
func (r *SubscriptionRecordRepository) upsertColumns(tx *gorm.DB, model *models.SubscriptionRecordModel) ([]string, error) {
	all := []string{
		"owner_id",
		"gateway_subscription_ref",
		"gateway_customer_ref",
		"status",
		"next_billing_at",
		"cancelled_at",
		"last_event_at",
		"updated_at",
	}
	if model.LastEventAt != nil {
		return all, nil
	}

	var stored []models.SubscriptionRecordModel
	if err := tx.Select("gateway_subscription_ref", "last_event_at").
		Where("card_id = ?", model.CardID).
		Limit(1).
		Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load stored subscription record: %w", err)
	}
	if len(stored) == 0 || stored[0].GatewaySubscriptionRef != model.GatewaySubscriptionRef || stored[0].LastEventAt == nil {
		return all, nil
	}

	columns := []string{"owner_id", "updated_at"}
	if model.GatewayCustomerRef != nil {
		columns = append(columns, "gateway_customer_ref")
	}
	return columns, nil
}

func (r *SubscriptionRecordRepository) GetByCardID(ctx context.Context, cardID uint) (*subscription.SubscriptionRecord, error) {
	return r.first(ctx, "card_id = ?", cardID)
}

func (r *SubscriptionRecordRepository) GetByGatewayRef(ctx context.Context, ref string) (*subscription.SubscriptionRecord, error) {
	return r.first(ctx, "gateway_subscription_ref = ?", ref)
}

func (r *SubscriptionRecordRepository) first(ctx context.Context, query string, arg interface{}) (*subscription.SubscriptionRecord, error) {
	var model models.SubscriptionRecordModel

	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription record: %w", err)
	}

	return mappers.SubscriptionRecordToDomain(&model)
}

// Update writes lifecycle changes unless a newer event was stored in the meantime.
func (r *SubscriptionRecordRepository) Update(ctx context.Context, s *subscription.SubscriptionRecord) (bool, error) {
	model := mappers.SubscriptionRecordToModel(s)

	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionRecordModel{}).
		Where("id = ?", model.ID)
	if model.LastEventAt != nil {
		query = query.Where("(last_event_at IS NULL OR last_event_at <= ?)", *model.LastEventAt)
	}

	result := query.Updates(map[string]interface{}{
		"status":          model.Status,
		"next_billing_at": model.NextBillingAt,
		"cancelled_at":    model.CancelledAt,
		"last_event_at":   model.LastEventAt,
		"updated_at":      model.UpdatedAt,
	})

	if result.Error != nil {
		return false, fmt.Errorf("failed to update subscription record: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}
