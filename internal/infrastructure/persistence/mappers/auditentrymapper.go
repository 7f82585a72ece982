package mappers

import (
	"bizcard/internal/domain/audit"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/infrastructure/persistence/models"
)

func AuditEntryToModel(e *audit.Entry) *models.AuditEntryModel {
	return &models.AuditEntryModel{
		ID:              e.ID,
		Actor:           e.Actor,
		Action:          e.Action,
		PaymentRecordID: e.PaymentRecordID,
		FromStatus:      e.FromStatus.String(),
		ToStatus:        e.ToStatus.String(),
		Result:          string(e.Result),
		Reason:          e.Reason,
		CreatedAt:       e.CreatedAt,
	}
}

func AuditEntryToDomain(model *models.AuditEntryModel) *audit.Entry {
	return &audit.Entry{
		ID:              model.ID,
		Actor:           model.Actor,
		Action:          model.Action,
		PaymentRecordID: model.PaymentRecordID,
		FromStatus:      vo.PaymentStatus(model.FromStatus),
		ToStatus:        vo.PaymentStatus(model.ToStatus),
		Result:          audit.Result(model.Result),
		Reason:          model.Reason,
		CreatedAt:       model.CreatedAt,
	}
}
