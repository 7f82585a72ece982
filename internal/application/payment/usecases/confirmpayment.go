package usecases

import (
	"context"
	"errors"
	"fmt"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
	"bizcard/internal/infrastructure/ratelimit"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/metrics"
)

type ConfirmPaymentCommand struct {
	PaymentSID string
	// IntentRef is what the client believes the intent is. When present it
	// must match the record.
	IntentRef string
}

type ConfirmPaymentConfig struct {
	RequestsPerMinute int
}

type ConfirmPaymentUseCase struct {
	payments   payment.PaymentRecordRepository
	cards      publication.CardPublicationStore
	gateway    paymentgateway.PaymentGateway
	reconciler *Reconciler
	cache      IntentStatusCache
	limiter    RateLimiter
	config     ConfirmPaymentConfig
	logger     logger.Interface
}

func NewConfirmPaymentUseCase(
	payments payment.PaymentRecordRepository,
	cards publication.CardPublicationStore,
	gateway paymentgateway.PaymentGateway,
	reconciler *Reconciler,
	cache IntentStatusCache,
	limiter RateLimiter,
	config ConfirmPaymentConfig,
	logger logger.Interface,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		payments:   payments,
		cards:      cards,
		gateway:    gateway,
		reconciler: reconciler,
		cache:      cache,
		limiter:    limiter,
		config:     config,
		logger:     logger,
	}
}

// Execute re-fetches the intent status from the gateway, reconciles it and
// returns the local status. Terminal records and records without an intent
// answer from local state without calling the gateway.
func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, cmd ConfirmPaymentCommand) (*PaymentStatusResult, error) {
	rec, err := uc.payments.GetBySID(ctx, cmd.PaymentSID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, err
	}

	intentRef := rec.GatewayIntentRef()
	if cmd.IntentRef != "" && (intentRef == nil || *intentRef != cmd.IntentRef) {
		return nil, apperrors.NewValidationError("intent does not belong to this payment")
	}

	if rec.Status().IsTerminal() || intentRef == nil {
		return uc.localStatus(ctx, rec)
	}

	if err := uc.checkRate(ctx, rec.SID()); err != nil {
		return nil, err
	}

	status, err := uc.fetchStatus(ctx, *intentRef)
	if err != nil {
		if errors.Is(err, paymentgateway.ErrTransient) {
			return nil, apperrors.NewUnavailableError("payment gateway temporarily unavailable")
		}
		uc.logger.Warnw("gateway refused status fetch", "payment_id", rec.ID(), "intent_ref", *intentRef, "error", err)
		return uc.localStatus(ctx, rec)
	}

	result, err := uc.reconciler.Apply(ctx, rec, Signal{
		Source:        vo.SignalSourcePoll,
		Outcome:       status.Outcome,
		FailureReason: status.FailureReason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile payment %d: %w", rec.ID(), err)
	}

	return newPaymentStatusResult(result.Record, result.Publication), nil
}

// fetchStatus coalesces concurrent polls of the same intent through the
// status cache. Cache failures fall through to the gateway.
func (uc *ConfirmPaymentUseCase) fetchStatus(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error) {
	cached, err := uc.cache.Get(ctx, intentRef)
	if err != nil {
		uc.logger.Warnw("intent status cache read failed", "intent_ref", intentRef, "error", err)
	}
	if cached != nil {
		metrics.ConfirmationCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ConfirmationCacheTotal.WithLabelValues("miss").Inc()

	status, err := uc.gateway.FetchStatus(ctx, intentRef)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, status); err != nil {
		uc.logger.Warnw("intent status cache write failed", "intent_ref", intentRef, "error", err)
	}
	return status, nil
}

// checkRate fails open: a limiter outage never blocks confirmation.
func (uc *ConfirmPaymentUseCase) checkRate(ctx context.Context, sid string) error {
	if uc.config.RequestsPerMinute <= 0 {
		return nil
	}

	allowed, err := uc.limiter.Allow(ctx, "confirm:"+sid, ratelimit.Limit{PerMinute: uc.config.RequestsPerMinute})
	if err != nil {
		uc.logger.Warnw("confirmation rate limiter unavailable", "payment_sid", sid, "error", err)
		return nil
	}
	if !allowed {
		return apperrors.NewRateLimitedError("too many confirmation requests")
	}
	return nil
}

func (uc *ConfirmPaymentUseCase) localStatus(ctx context.Context, rec *payment.PaymentRecord) (*PaymentStatusResult, error) {
	state, err := uc.cards.GetPublicationState(ctx, rec.CardID())
	if err != nil {
		return nil, fmt.Errorf("failed to get publication state: %w", err)
	}
	return newPaymentStatusResult(rec, state), nil
}
