package mappers

import (
	"fmt"

	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/infrastructure/persistence/models"
)

func PaymentRecordToModel(p *payment.PaymentRecord) *models.PaymentRecordModel {
	model := &models.PaymentRecordModel{
		ID:                     p.ID(),
		SID:                    p.SID(),
		OwnerID:                p.OwnerID(),
		CardID:                 p.CardID(),
		Kind:                   p.Kind().String(),
		Method:                 p.Method().String(),
		AmountMinor:            p.Amount().AmountMinor(),
		TaxMinor:               p.Amount().TaxMinor(),
		TotalMinor:             p.Amount().TotalMinor(),
		Currency:               p.Amount().Currency(),
		Status:                 p.Status().String(),
		GatewayIntentRef:       p.GatewayIntentRef(),
		GatewaySubscriptionRef: p.GatewaySubscriptionRef(),
		GatewayCustomerRef:     p.GatewayCustomerRef(),
		PaidAt:                 p.PaidAt(),
		FailureReason:          p.FailureReason(),
		CreatedAt:              p.CreatedAt(),
		UpdatedAt:              p.UpdatedAt(),
	}

	if via := p.SettledVia(); via != nil {
		s := via.String()
		model.SettledVia = &s
	}
	if len(p.Metadata()) > 0 {
		model.Metadata = p.Metadata()
	}

	return model
}

func PaymentRecordToDomain(model *models.PaymentRecordModel) (*payment.PaymentRecord, error) {
	kind, err := vo.NewPaymentKind(model.Kind)
	if err != nil {
		return nil, err
	}

	method, err := vo.NewPaymentMethod(model.Method)
	if err != nil {
		return nil, err
	}

	status, err := vo.NewPaymentStatus(model.Status)
	if err != nil {
		return nil, err
	}

	amount, err := vo.NewAmount(model.AmountMinor, model.TaxMinor, model.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount for payment %d: %w", model.ID, err)
	}
	if amount.TotalMinor() != model.TotalMinor {
		return nil, fmt.Errorf("stored total %d does not match amount plus tax for payment %d", model.TotalMinor, model.ID)
	}

	var settledVia *vo.SettlementChannel
	if model.SettledVia != nil {
		via := vo.SettlementChannel(*model.SettledVia)
		if !via.IsValid() {
			return nil, fmt.Errorf("invalid settlement channel: %s", *model.SettledVia)
		}
		settledVia = &via
	}

	return payment.ReconstructPaymentRecordWithParams(payment.PaymentRecordReconstructParams{
		ID:                     model.ID,
		SID:                    model.SID,
		OwnerID:                model.OwnerID,
		CardID:                 model.CardID,
		Kind:                   kind,
		Method:                 method,
		Amount:                 amount,
		Status:                 status,
		GatewayIntentRef:       model.GatewayIntentRef,
		GatewaySubscriptionRef: model.GatewaySubscriptionRef,
		GatewayCustomerRef:     model.GatewayCustomerRef,
		SettledVia:             settledVia,
		PaidAt:                 model.PaidAt,
		FailureReason:          model.FailureReason,
		Metadata:               model.Metadata,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}), nil
}

func PaymentRecordsToDomain(ms []models.PaymentRecordModel) ([]*payment.PaymentRecord, error) {
	records := make([]*payment.PaymentRecord, 0, len(ms))
	for i := range ms {
		p, err := PaymentRecordToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, nil
}
