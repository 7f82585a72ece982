package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/logger"
)

// PaymentStatusResult is the local view of a payment returned to clients.
type PaymentStatusResult struct {
	SID           string
	CardID        uint
	Kind          vo.PaymentKind
	Method        vo.PaymentMethod
	Status        vo.PaymentStatus
	AmountMinor   int64
	TaxMinor      int64
	TotalMinor    int64
	Currency      string
	PaidAt        *time.Time
	FailureReason string
	CardStatus    publication.PaymentStatus
	IsPublished   bool
}

func newPaymentStatusResult(rec *payment.PaymentRecord, state publication.State) *PaymentStatusResult {
	r := &PaymentStatusResult{
		SID:         rec.SID(),
		CardID:      rec.CardID(),
		Kind:        rec.Kind(),
		Method:      rec.Method(),
		Status:      rec.Status(),
		AmountMinor: rec.Amount().AmountMinor(),
		TaxMinor:    rec.Amount().TaxMinor(),
		TotalMinor:  rec.Amount().TotalMinor(),
		Currency:    rec.Amount().Currency(),
		PaidAt:      rec.PaidAt(),
		CardStatus:  state.PaymentStatus,
		IsPublished: state.IsPublished,
	}
	if reason := rec.FailureReason(); reason != nil {
		r.FailureReason = *reason
	}
	return r
}

type GetPaymentUseCase struct {
	payments payment.PaymentRecordRepository
	cards    publication.CardPublicationStore
	logger   logger.Interface
}

func NewGetPaymentUseCase(payments payment.PaymentRecordRepository, cards publication.CardPublicationStore, logger logger.Interface) *GetPaymentUseCase {
	return &GetPaymentUseCase{
		payments: payments,
		cards:    cards,
		logger:   logger,
	}
}

func (uc *GetPaymentUseCase) Execute(ctx context.Context, sid string) (*PaymentStatusResult, error) {
	rec, err := uc.payments.GetBySID(ctx, sid)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, err
	}

	state, err := uc.cards.GetPublicationState(ctx, rec.CardID())
	if err != nil {
		return nil, fmt.Errorf("failed to get publication state: %w", err)
	}

	return newPaymentStatusResult(rec, state), nil
}
