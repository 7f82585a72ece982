package mappers

import (
	"bizcard/internal/domain/subscription"
	vo "bizcard/internal/domain/subscription/valueobjects"
	"bizcard/internal/infrastructure/persistence/models"
)

func SubscriptionRecordToModel(s *subscription.SubscriptionRecord) *models.SubscriptionRecordModel {
	return &models.SubscriptionRecordModel{
		ID:                     s.ID(),
		OwnerID:                s.OwnerID(),
		CardID:                 s.CardID(),
		GatewaySubscriptionRef: s.GatewaySubscriptionRef(),
		GatewayCustomerRef:     s.GatewayCustomerRef(),
		Status:                 s.Status().String(),
		NextBillingAt:          s.NextBillingAt(),
		CancelledAt:            s.CancelledAt(),
		LastEventAt:            s.LastEventAt(),
		CreatedAt:              s.CreatedAt(),
		UpdatedAt:              s.UpdatedAt(),
	}
}

func SubscriptionRecordToDomain(model *models.SubscriptionRecordModel) (*subscription.SubscriptionRecord, error) {
	status, err := vo.NewSubscriptionStatus(model.Status)
	if err != nil {
		return nil, err
	}

	return subscription.ReconstructSubscriptionRecordWithParams(subscription.SubscriptionRecordReconstructParams{
		ID:                     model.ID,
		OwnerID:                model.OwnerID,
		CardID:                 model.CardID,
		GatewaySubscriptionRef: model.GatewaySubscriptionRef,
		GatewayCustomerRef:     model.GatewayCustomerRef,
		Status:                 status,
		NextBillingAt:          model.NextBillingAt,
		CancelledAt:            model.CancelledAt,
		LastEventAt:            model.LastEventAt,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}), nil
}
