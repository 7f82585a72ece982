package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizcard/internal/domain/publication"
	"bizcard/internal/infrastructure/persistence/mappers"
	"bizcard/internal/infrastructure/persistence/models"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/db"
)

// CardPublicationRepository stores the publication columns of cards.
type CardPublicationRepository struct {
	db *gorm.DB
}

func NewCardPublicationRepository(db *gorm.DB) *CardPublicationRepository {
	return &CardPublicationRepository{db: db}
}

func (r *CardPublicationRepository) EnsureCard(ctx context.Context, card publication.Card) error {
	now := biztime.NowUTC()
	model := &models.CardPublicationModel{
		CardID:        card.CardID,
		OwnerID:       card.OwnerID,
		ContactEmail:  card.ContactEmail,
		PaymentStatus: publication.PaymentStatusUnpaid.String(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_id"}},
		DoNothing: true,
	}
	if card.ContactEmail != "" {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "card_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"contact_email", "updated_at"}),
		}
	}

	if err := db.GetTxFromContext(ctx, r.db).Clauses(onConflict).Create(model).Error; err != nil {
		return fmt.Errorf("failed to ensure card publication: %w", err)
	}

	return nil
}

func (r *CardPublicationRepository) GetCard(ctx context.Context, cardID uint) (*publication.Card, error) {
	var model models.CardPublicationModel

	if err := db.GetTxFromContext(ctx, r.db).Where("card_id = ?", cardID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, publication.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card publication: %w", err)
	}

	return mappers.CardPublicationToDomain(&model)
}

func (r *CardPublicationRepository) GetPublicationState(ctx context.Context, cardID uint) (publication.State, error) {
	card, err := r.GetCard(ctx, cardID)
	if err != nil {
		return publication.State{}, err
	}
	return card.State, nil
}

// SetPublicationState writes the state unconditionally. Used by operators
// and tests; reconciliation goes through CompareAndSetPublicationState.
func (r *CardPublicationRepository) SetPublicationState(ctx context.Context, cardID uint, state publication.State) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CardPublicationModel{}).
		Where("card_id = ?", cardID).
		Updates(map[string]interface{}{
			"payment_status": state.PaymentStatus.String(),
			"is_published":   state.IsPublished,
			"updated_at":     biztime.NowUTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to set publication state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return publication.ErrCardNotFound
	}

	return nil
}

func (r *CardPublicationRepository) CompareAndSetPublicationState(ctx context.Context, cardID uint, prev, next publication.State) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CardPublicationModel{}).
		Where("card_id = ? AND payment_status = ? AND is_published = ?", cardID, prev.PaymentStatus.String(), prev.IsPublished).
		Updates(map[string]interface{}{
			"payment_status": next.PaymentStatus.String(),
			"is_published":   next.IsPublished,
			"updated_at":     biztime.NowUTC(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to compare-and-set publication state: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// PublishIfPaid opens the card in the same statement that checks its status
// against the paid set.
func (r *CardPublicationRepository) PublishIfPaid(ctx context.Context, cardID uint) (bool, error) {
	now := biztime.NowUTC()
	paid := []string{
		publication.PaymentStatusCardPaid.String(),
		publication.PaymentStatusBankPaid.String(),
		publication.PaymentStatusGatewaySettled.String(),
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CardPublicationModel{}).
		Where("card_id = ? AND is_published = ? AND payment_status IN ?", cardID, false, paid).
		Updates(map[string]interface{}{
			"is_published": true,
			"published_at": now,
			"updated_at":   now,
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to publish card: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}
