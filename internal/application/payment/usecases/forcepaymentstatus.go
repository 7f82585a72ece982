package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bizcard/internal/domain/audit"
	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/db"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/logger"
)

type ForcePaymentStatusCommand struct {
	// PaymentRef is the internal ID or the public SID.
	PaymentRef   string
	TargetStatus string
	Actor        string
	Reason       string
}

type ForcePaymentStatusResult struct {
	Payment    *PaymentStatusResult
	FromStatus vo.PaymentStatus
	Result     audit.Result
	AuditID    string
}

// ForcePaymentStatusUseCase lets an operator settle or fail a payment. It
// goes through the same reconciler as gateway signals, so a forced status
// obeys the same sticky terminal rules and triggers the same issuance. The
// status change and its audit entry commit together or not at all.
type ForcePaymentStatusUseCase struct {
	payments   payment.PaymentRecordRepository
	audits     audit.AuditRepository
	reconciler *Reconciler
	txMgr      *db.TransactionManager
	logger     logger.Interface
}

func NewForcePaymentStatusUseCase(
	payments payment.PaymentRecordRepository,
	audits audit.AuditRepository,
	reconciler *Reconciler,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *ForcePaymentStatusUseCase {
	return &ForcePaymentStatusUseCase{
		payments:   payments,
		audits:     audits,
		reconciler: reconciler,
		txMgr:      txMgr,
		logger:     logger,
	}
}

func (uc *ForcePaymentStatusUseCase) Execute(ctx context.Context, cmd ForcePaymentStatusCommand) (*ForcePaymentStatusResult, error) {
	if cmd.Actor == "" {
		return nil, apperrors.NewUnauthorizedError("operator identity required")
	}

	outcome, err := outcomeForTarget(cmd.TargetStatus)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid target status", err.Error())
	}

	rec, err := resolvePayment(ctx, uc.payments, cmd.PaymentRef)
	if err != nil {
		return nil, err
	}
	from := rec.Status()

	reason := cmd.Reason
	if reason == "" {
		reason = "forced by " + cmd.Actor
	}

	sig := Signal{
		Source:        vo.SignalSourceOperator,
		Outcome:       outcome,
		FailureReason: reason,
	}

	var (
		settled     *Settlement
		entry       *audit.Entry
		auditResult audit.Result
	)
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		s, err := uc.reconciler.Settle(txCtx, rec, sig)
		if err != nil {
			return fmt.Errorf("failed to reconcile payment %d: %w", rec.ID(), err)
		}

		auditResult = auditResultFor(s)
		e, err := audit.NewEntry(cmd.Actor, audit.ActionForceStatus, rec.ID(), from, s.Record.Status(), auditResult, cmd.Reason)
		if err != nil {
			return apperrors.NewValidationError("invalid audit entry", err.Error())
		}
		if err := uc.audits.Create(txCtx, e); err != nil {
			uc.logger.Errorw("failed to write audit entry for forced status",
				"payment_id", rec.ID(),
				"actor", cmd.Actor,
				"result", auditResult,
				"error", err,
			)
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		settled, entry = s, e
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Publication and issuance run after the commit; they are idempotent and
	// the next pass over the record retries them.
	result, err := uc.reconciler.Finish(ctx, settled, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to finish payment %d: %w", rec.ID(), err)
	}

	uc.logger.Infow("operator forced payment status",
		"payment_id", rec.ID(),
		"actor", cmd.Actor,
		"from", from,
		"target", cmd.TargetStatus,
		"result", auditResult,
	)

	if auditResult == audit.ResultConflict {
		return nil, apperrors.NewConflictError(
			"payment is already terminal",
			fmt.Sprintf("payment %s is %s", rec.SID(), result.Record.Status()),
		)
	}

	return &ForcePaymentStatusResult{
		Payment:    newPaymentStatusResult(result.Record, result.Publication),
		FromStatus: from,
		Result:     auditResult,
		AuditID:    entry.ID,
	}, nil
}

func outcomeForTarget(target string) (vo.Outcome, error) {
	status, err := vo.NewPaymentStatus(target)
	if err != nil {
		return "", err
	}
	switch status {
	case vo.PaymentStatusCompleted:
		return vo.OutcomeSucceeded, nil
	case vo.PaymentStatusFailed:
		return vo.OutcomeFailed, nil
	default:
		return "", fmt.Errorf("status %s cannot be forced", status)
	}
}

func auditResultFor(r *Settlement) audit.Result {
	switch {
	case r.Transitioned:
		return audit.ResultTransitioned
	case r.Decision == payment.DecisionConflict:
		return audit.ResultConflict
	default:
		return audit.ResultNoop
	}
}

// resolvePayment accepts either the numeric record ID or the public SID.
func resolvePayment(ctx context.Context, payments payment.PaymentRecordRepository, ref string) (*payment.PaymentRecord, error) {
	var (
		rec *payment.PaymentRecord
		err error
	)
	if id, parseErr := strconv.ParseUint(ref, 10, 64); parseErr == nil {
		rec, err = payments.GetByID(ctx, uint(id))
	} else {
		rec, err = payments.GetBySID(ctx, ref)
	}

	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, err
	}
	return rec, nil
}

type ListPaymentAuditUseCase struct {
	payments payment.PaymentRecordRepository
	audits   audit.AuditRepository
}

func NewListPaymentAuditUseCase(payments payment.PaymentRecordRepository, audits audit.AuditRepository) *ListPaymentAuditUseCase {
	return &ListPaymentAuditUseCase{
		payments: payments,
		audits:   audits,
	}
}

func (uc *ListPaymentAuditUseCase) Execute(ctx context.Context, paymentRef string) ([]*audit.Entry, error) {
	rec, err := resolvePayment(ctx, uc.payments, paymentRef)
	if err != nil {
		return nil, err
	}
	return uc.audits.ListByPaymentRecordID(ctx, rec.ID())
}
