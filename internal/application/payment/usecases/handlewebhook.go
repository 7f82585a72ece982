package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/subscription"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/metrics"
)

// Webhook handling results, used as metric labels.
const (
	webhookResultProcessed = "processed"
	webhookResultIgnored   = "ignored"
	webhookResultRetry     = "retry"
	webhookResultError     = "error"
)

var (
	// errIgnoredEvent marks a delivery that is acknowledged without a state change.
	errIgnoredEvent = errors.New("webhook event ignored")
	// errForeignIntent means the intent carries no record ID from this service.
	errForeignIntent = errors.New("intent does not reference a payment record")
)

type HandleWebhookUseCase struct {
	verifier      paymentgateway.WebhookVerifier
	payments      payment.PaymentRecordRepository
	subscriptions subscription.SubscriptionRecordRepository
	reconciler    *Reconciler
	logger        logger.Interface
}

func NewHandleWebhookUseCase(
	verifier paymentgateway.WebhookVerifier,
	payments payment.PaymentRecordRepository,
	subscriptions subscription.SubscriptionRecordRepository,
	reconciler *Reconciler,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		verifier:      verifier,
		payments:      payments,
		subscriptions: subscriptions,
		reconciler:    reconciler,
		logger:        logger,
	}
}

// Execute verifies and applies one webhook delivery. A nil error means the
// delivery is acknowledged, including duplicates, conflicts and event types
// the service does not handle. An unavailable error asks the gateway to
// redeliver.
func (uc *HandleWebhookUseCase) Execute(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := uc.verifier.ParseWebhook(payload, signatureHeader)
	if err != nil {
		metrics.WebhookSignatureFailuresTotal.Inc()
		if errors.Is(err, paymentgateway.ErrInvalidSignature) {
			uc.logger.Warnw("rejected webhook with invalid signature", "error", err)
			return apperrors.NewBadRequestError("invalid webhook signature")
		}
		uc.logger.Warnw("rejected malformed webhook", "error", err)
		return apperrors.NewBadRequestError("malformed webhook payload")
	}

	switch event.Kind {
	case paymentgateway.EventKindIntent:
		err = uc.handleIntent(ctx, event)
	case paymentgateway.EventKindSubscription:
		err = uc.handleSubscription(ctx, event)
	default:
		uc.logger.Debugw("ignored webhook event", "event_id", event.ID, "type", event.Type)
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, webhookResultIgnored).Inc()
		return nil
	}

	switch {
	case err == nil:
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, webhookResultProcessed).Inc()
	case errors.Is(err, errIgnoredEvent):
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, webhookResultIgnored).Inc()
		return nil
	case apperrors.IsUnavailableError(err):
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, webhookResultRetry).Inc()
	default:
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, webhookResultError).Inc()
	}
	return err
}

func (uc *HandleWebhookUseCase) handleIntent(ctx context.Context, event *paymentgateway.WebhookEvent) error {
	intent := event.Intent

	rec, err := uc.findRecord(ctx, intent)
	if errors.Is(err, errForeignIntent) {
		uc.logger.Warnw("webhook for intent created outside this service, ignoring",
			"event_id", event.ID,
			"intent_ref", intent.IntentRef,
		)
		return errIgnoredEvent
	}
	if err != nil {
		return err
	}
	if rec == nil {
		// The checkout named this record but its write is not visible yet.
		uc.logger.Warnw("webhook for unknown payment, asking for redelivery",
			"event_id", event.ID,
			"intent_ref", intent.IntentRef,
		)
		return apperrors.NewUnavailableError("payment record not found yet")
	}

	if bound := rec.GatewayIntentRef(); bound != nil && *bound != intent.IntentRef {
		uc.logger.Warnw("webhook intent does not match the record's intent, ignoring",
			"event_id", event.ID,
			"payment_id", rec.ID(),
			"intent_ref", intent.IntentRef,
			"bound_intent_ref", *bound,
		)
		return errIgnoredEvent
	}
	if rec.GatewayIntentRef() == nil {
		if _, err := uc.payments.AttachIntentRef(ctx, rec.ID(), intent.IntentRef); err != nil {
			if errors.Is(err, payment.ErrIntentAlreadyBound) {
				uc.logger.Warnw("intent ref already bound to another payment", "intent_ref", intent.IntentRef, "payment_id", rec.ID())
				return errIgnoredEvent
			}
			return fmt.Errorf("failed to attach intent ref: %w", err)
		}
	}

	result, err := uc.reconciler.Apply(ctx, rec, Signal{
		Source:        vo.SignalSourceWebhook,
		Outcome:       intent.Outcome,
		FailureReason: intent.FailureReason,
	})
	if err != nil {
		return fmt.Errorf("failed to reconcile payment %d: %w", rec.ID(), err)
	}

	if result.FollowUpErr != nil && !errors.Is(result.FollowUpErr, paymentgateway.ErrPermanent) {
		return apperrors.NewUnavailableError("payment follow-up incomplete", result.FollowUpErr.Error())
	}
	return nil
}

// findRecord resolves the payment by intent ref, falling back to the record
// ID written into the intent metadata at checkout. It returns errForeignIntent
// when the metadata names no record, and nil, nil when the named record does
// not exist yet.
func (uc *HandleWebhookUseCase) findRecord(ctx context.Context, intent *paymentgateway.IntentStatus) (*payment.PaymentRecord, error) {
	rec, err := uc.payments.GetByGatewayIntentRef(ctx, intent.IntentRef)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to get payment by intent ref: %w", err)
	}

	id, parseErr := strconv.ParseUint(intent.Metadata[paymentgateway.MetadataPaymentRecordID], 10, 64)
	if parseErr != nil || id == 0 {
		return nil, errForeignIntent
	}

	rec, err = uc.payments.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by id: %w", err)
	}
	return rec, nil
}

func (uc *HandleWebhookUseCase) handleSubscription(ctx context.Context, event *paymentgateway.WebhookEvent) error {
	ev := *event.Subscription

	rec, err := uc.subscriptions.GetByGatewayRef(ctx, ev.GatewaySubscriptionRef)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return fmt.Errorf("failed to get subscription record: %w", err)
	}

	if rec == nil {
		return uc.recordNewSubscription(ctx, event.ID, ev)
	}

	if err := rec.Apply(ev); err != nil {
		if errors.Is(err, subscription.ErrStaleEvent) {
			uc.logger.Infow("ignored stale subscription event", "event_id", event.ID, "subscription_ref", ev.GatewaySubscriptionRef)
			return nil
		}
		return err
	}

	updated, err := uc.subscriptions.Update(ctx, rec)
	if err != nil {
		return err
	}
	if !updated {
		uc.logger.Infow("newer subscription event already stored", "event_id", event.ID, "subscription_ref", ev.GatewaySubscriptionRef)
		return nil
	}

	uc.logger.Infow("subscription updated",
		"event_id", event.ID,
		"subscription_ref", ev.GatewaySubscriptionRef,
		"status", rec.Status(),
	)
	return nil
}

// recordNewSubscription stores a subscription first observed through a
// webhook. Events without card metadata cannot be attributed and are dropped.
func (uc *HandleWebhookUseCase) recordNewSubscription(ctx context.Context, eventID string, ev subscription.LifecycleEvent) error {
	if ev.CardID == 0 {
		uc.logger.Warnw("subscription event without card metadata, ignoring",
			"event_id", eventID,
			"subscription_ref", ev.GatewaySubscriptionRef,
		)
		return nil
	}

	rec, err := subscription.NewSubscriptionRecord(ev.OwnerID, ev.CardID, ev.GatewaySubscriptionRef, ev.GatewayCustomerRef, ev.NextBillingAt)
	if err != nil {
		return apperrors.NewValidationError("invalid subscription event", err.Error())
	}
	if err := rec.Apply(ev); err != nil {
		return err
	}

	existing, err := uc.subscriptions.GetByCardID(ctx, ev.CardID)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return fmt.Errorf("failed to get subscription record: %w", err)
	}
	if existing != nil && supersedes(existing, ev) {
		uc.logger.Infow("ignored event for a subscription the card has replaced",
			"event_id", eventID,
			"card_id", ev.CardID,
			"subscription_ref", ev.GatewaySubscriptionRef,
			"current_subscription_ref", existing.GatewaySubscriptionRef(),
		)
		return nil
	}

	if err := uc.subscriptions.Upsert(ctx, rec); err != nil {
		return err
	}

	uc.logger.Infow("subscription recorded from webhook",
		"event_id", eventID,
		"card_id", ev.CardID,
		"subscription_ref", ev.GatewaySubscriptionRef,
		"status", rec.Status(),
	)
	return nil
}

// supersedes reports whether the card's stored subscription should win over
// an event for a different subscription: a cancellation of some other
// subscription never ends the current active one, and older events never
// replace newer state.
func supersedes(current *subscription.SubscriptionRecord, ev subscription.LifecycleEvent) bool {
	if current.Status().IsActive() && !ev.Status.IsActive() {
		return true
	}
	last := current.LastEventAt()
	return last != nil && ev.OccurredAt.Before(*last)
}
