package usecases

import (
	"context"
	"fmt"
	"time"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/logger"
)

type SweepConfig struct {
	MinAge    time.Duration
	BatchSize int
}

type SweepResult struct {
	Checked      int
	Transitioned int
	// Resumed counts completed payments whose issuance or subscription was
	// finished by this sweep.
	Resumed int
	Failed  int
}

// SweepPendingPaymentsUseCase polls the gateway for payments that have been
// pending too long, recovering from webhooks that never arrived. It also
// finishes completed payments whose follow-ups were cut short.
type SweepPendingPaymentsUseCase struct {
	payments   payment.PaymentRecordRepository
	gateway    paymentgateway.PaymentGateway
	reconciler *Reconciler
	config     SweepConfig
	logger     logger.Interface
}

func NewSweepPendingPaymentsUseCase(
	payments payment.PaymentRecordRepository,
	gateway paymentgateway.PaymentGateway,
	reconciler *Reconciler,
	config SweepConfig,
	logger logger.Interface,
) *SweepPendingPaymentsUseCase {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	return &SweepPendingPaymentsUseCase{
		payments:   payments,
		gateway:    gateway,
		reconciler: reconciler,
		config:     config,
		logger:     logger,
	}
}

func (uc *SweepPendingPaymentsUseCase) Execute(ctx context.Context) (*SweepResult, error) {
	olderThan := biztime.NowUTC().Add(-uc.config.MinAge)

	records, err := uc.payments.ListStalePending(ctx, olderThan, uc.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending payments: %w", err)
	}

	result := &SweepResult{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		transitioned, err := uc.sweepOne(ctx, rec)
		if err != nil {
			result.Failed++
			uc.logger.Warnw("failed to sweep pending payment", "payment_id", rec.ID(), "error", err)
			continue
		}
		if transitioned {
			result.Transitioned++
		}
	}

	if err := uc.resumeFollowUps(ctx, olderThan, result); err != nil {
		return result, err
	}

	if result.Checked > 0 {
		uc.logger.Infow("pending payment sweep finished",
			"checked", result.Checked,
			"transitioned", result.Transitioned,
			"resumed", result.Resumed,
			"failed", result.Failed,
		)
	}
	return result, nil
}

// resumeFollowUps re-runs reconciliation for completed payments with no
// finished issuance. The record is already terminal, so the pass only drives
// the publication gate, issuance and subscription creation.
func (uc *SweepPendingPaymentsUseCase) resumeFollowUps(ctx context.Context, olderThan time.Time, result *SweepResult) error {
	records, err := uc.payments.ListCompletedUnfinished(ctx, olderThan, uc.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list unfinished completed payments: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Checked++

		applied, err := uc.reconciler.Apply(ctx, rec, Signal{
			Source:  vo.SignalSourceSweeper,
			Outcome: vo.OutcomeSucceeded,
		})
		if err == nil {
			err = applied.FollowUpErr
		}
		if err != nil {
			result.Failed++
			uc.logger.Warnw("failed to resume completed payment", "payment_id", rec.ID(), "card_id", rec.CardID(), "error", err)
			continue
		}
		result.Resumed++
	}
	return nil
}

func (uc *SweepPendingPaymentsUseCase) sweepOne(ctx context.Context, rec *payment.PaymentRecord) (bool, error) {
	ref := rec.GatewayIntentRef()
	if ref == nil {
		return false, nil
	}

	// Lookup errors leave the record pending. A rejected lookup usually means
	// misconfiguration, not a failed payment.
	status, err := uc.gateway.FetchStatus(ctx, *ref)
	if err != nil {
		return false, err
	}

	result, err := uc.reconciler.Apply(ctx, rec, Signal{
		Source:        vo.SignalSourceSweeper,
		Outcome:       status.Outcome,
		FailureReason: status.FailureReason,
	})
	if err != nil {
		return false, err
	}
	return result.Transitioned, nil
}
