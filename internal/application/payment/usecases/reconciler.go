package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/domain/issuance"
	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
	"bizcard/internal/domain/subscription"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/metrics"
)

// Signal is one observation of a payment's outcome, whatever delivered it.
type Signal struct {
	Source        vo.SignalSource
	Outcome       vo.Outcome
	FailureReason string
}

// ReconcileResult describes what a reconciliation pass did.
type ReconcileResult struct {
	Record       *payment.PaymentRecord
	Decision     payment.Decision
	Transitioned bool
	Publication  publication.State
	Issuance     *issuance.Result
	// FollowUpErr is set when issuance or subscription creation failed after
	// the payment itself was reconciled. The pass is safe to repeat.
	FollowUpErr error
}

// Reconciler is the single entry point that moves payment records between
// statuses. Every caller (webhook, poll, sweeper, operator, checkout) goes
// through Apply.
type Reconciler struct {
	payments      payment.PaymentRecordRepository
	subscriptions subscription.SubscriptionRecordRepository
	cards         publication.CardPublicationStore
	gateway       paymentgateway.PaymentGateway
	gate          PublicationGate
	issuer        IssuanceTrigger
	logger        logger.Interface
}

func NewReconciler(
	payments payment.PaymentRecordRepository,
	subscriptions subscription.SubscriptionRecordRepository,
	cards publication.CardPublicationStore,
	gateway paymentgateway.PaymentGateway,
	gate PublicationGate,
	issuer IssuanceTrigger,
	log logger.Interface,
) *Reconciler {
	return &Reconciler{
		payments:      payments,
		subscriptions: subscriptions,
		cards:         cards,
		gateway:       gateway,
		gate:          gate,
		issuer:        issuer,
		logger:        log,
	}
}

// Settlement is the status half of a reconciliation pass: the decision and
// whether this pass committed the transition.
type Settlement struct {
	Record       *payment.PaymentRecord
	Decision     payment.Decision
	Transitioned bool
}

// Apply runs one reconciliation pass for rec. The status change is a
// conditional update on the pending status, so concurrent passes for the same
// record resolve to exactly one transition. The publication gate runs on
// every pass, including no-ops.
func (r *Reconciler) Apply(ctx context.Context, rec *payment.PaymentRecord, sig Signal) (*ReconcileResult, error) {
	settled, err := r.Settle(ctx, rec, sig)
	if err != nil {
		return nil, err
	}
	return r.Finish(ctx, settled, sig)
}

// Settle decides the signal and commits the status change, if any. It only
// touches the payment record, so callers may run it inside a transaction
// together with their own writes and call Finish after the commit.
func (r *Reconciler) Settle(ctx context.Context, rec *payment.PaymentRecord, sig Signal) (*Settlement, error) {
	decision, target := payment.Decide(rec.Status(), sig.Outcome)

	transitioned := false
	if decision == payment.DecisionApply {
		ok, err := r.transition(ctx, rec, target, sig)
		if err != nil {
			return nil, err
		}
		transitioned = ok
	}

	current, err := r.payments.GetByID(ctx, rec.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to reload payment record: %w", err)
	}
	if decision == payment.DecisionApply && !transitioned {
		// Another pass committed first; judge the signal against its result.
		decision, _ = payment.Decide(current.Status(), sig.Outcome)
	}

	return &Settlement{
		Record:       current,
		Decision:     decision,
		Transitioned: transitioned,
	}, nil
}

// Finish refreshes the card's publication state and, for completed payments,
// runs issuance and subscription creation.
func (r *Reconciler) Finish(ctx context.Context, settled *Settlement, sig Signal) (*ReconcileResult, error) {
	current := settled.Record

	metrics.ReconcileTotal.WithLabelValues(sig.Source.String(), settled.Decision.String()).Inc()
	r.logDecision(current, sig, settled.Decision, settled.Transitioned)

	state, err := r.gate.Refresh(ctx, current.CardID())
	if err != nil {
		return nil, fmt.Errorf("failed to refresh publication state: %w", err)
	}

	result := &ReconcileResult{
		Record:       current,
		Decision:     settled.Decision,
		Transitioned: settled.Transitioned,
		Publication:  state,
	}

	if settled.Transitioned && current.Status() == vo.PaymentStatusFailed {
		r.closeIntent(ctx, current)
	}

	if current.Status().IsCompleted() {
		r.followUp(ctx, current, result)
		if result.Issuance != nil && !result.Issuance.AlreadyIssued {
			if state, err := r.cards.GetPublicationState(ctx, current.CardID()); err == nil {
				result.Publication = state
			}
		}
	}

	return result, nil
}

func (r *Reconciler) transition(ctx context.Context, rec *payment.PaymentRecord, target vo.PaymentStatus, sig Signal) (bool, error) {
	switch target {
	case vo.PaymentStatusCompleted:
		ok, err := r.payments.CompleteIfPending(ctx, rec.ID(), sig.Source.SettlementChannel(), biztime.NowUTC())
		if err != nil {
			return false, fmt.Errorf("failed to complete payment record: %w", err)
		}
		return ok, nil
	case vo.PaymentStatusFailed:
		reason := sig.FailureReason
		if reason == "" {
			reason = sig.Source.String() + "_reported_failure"
		}
		ok, err := r.payments.FailIfPending(ctx, rec.ID(), reason)
		if err != nil {
			return false, fmt.Errorf("failed to fail payment record: %w", err)
		}
		return ok, nil
	default:
		return false, fmt.Errorf("%w: %s", payment.ErrInvalidTransition, target)
	}
}

// closeIntent cancels the gateway intent of a payment that just failed. A
// declined intent can otherwise be confirmed again with another card, and that
// charge would land on a record that can no longer complete. Cancellation is
// best effort: an intent the gateway already closed rejects it.
func (r *Reconciler) closeIntent(ctx context.Context, rec *payment.PaymentRecord) {
	ref := rec.GatewayIntentRef()
	if ref == nil {
		return
	}
	if err := r.gateway.CancelIntent(ctx, *ref); err != nil {
		r.logger.Warnw("failed to cancel intent of failed payment",
			"payment_id", rec.ID(),
			"intent_ref", *ref,
			"error", err,
		)
	}
}

// followUp runs the side effects owed to a completed payment. Both are
// idempotent, so they run on every pass over a completed record and a failed
// attempt is retried by the next delivery.
func (r *Reconciler) followUp(ctx context.Context, rec *payment.PaymentRecord, result *ReconcileResult) {
	var errs []error

	issued, err := r.issuer.IssueIfNeeded(ctx, rec.CardID())
	if err != nil {
		r.logger.Errorw("issuance failed", "payment_id", rec.ID(), "card_id", rec.CardID(), "error", err)
		errs = append(errs, fmt.Errorf("issuance: %w", err))
	} else {
		result.Issuance = &issued
	}

	if rec.Kind().RequiresSubscription() && rec.GatewaySubscriptionRef() == nil {
		if err := r.ensureSubscription(ctx, rec); err != nil {
			r.logger.Errorw("subscription creation failed", "payment_id", rec.ID(), "card_id", rec.CardID(), "error", err)
			errs = append(errs, fmt.Errorf("subscription: %w", err))
		}
	}

	result.FollowUpErr = errors.Join(errs...)
}

// ensureSubscription starts recurring billing for the card unless it already
// has a gateway subscription.
func (r *Reconciler) ensureSubscription(ctx context.Context, rec *payment.PaymentRecord) error {
	existing, err := r.subscriptions.GetByCardID(ctx, rec.CardID())
	switch {
	case err == nil && existing.GatewaySubscriptionRef() != "" && existing.Status().IsActive():
		return r.payments.SetSubscriptionRef(ctx, rec.ID(), existing.GatewaySubscriptionRef())
	case err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound):
		return fmt.Errorf("failed to get subscription record: %w", err)
	}

	customerRef, err := r.customerRef(ctx, rec)
	if err != nil {
		return err
	}

	created, err := r.gateway.CreateSubscription(ctx, paymentgateway.CreateSubscriptionRequest{
		CustomerRef: customerRef,
		Metadata: map[string]string{
			paymentgateway.MetadataPaymentRecordID: strconv.FormatUint(uint64(rec.ID()), 10),
			paymentgateway.MetadataCardID:          strconv.FormatUint(uint64(rec.CardID()), 10),
			paymentgateway.MetadataOwnerID:         strconv.FormatUint(uint64(rec.OwnerID()), 10),
		},
		IdempotencyKey: fmt.Sprintf("sub-card-%d-payment-%d", rec.CardID(), rec.ID()),
	})
	if err != nil {
		return err
	}

	if err := r.payments.SetSubscriptionRef(ctx, rec.ID(), created.SubscriptionRef); err != nil {
		return err
	}

	sub, err := subscription.NewSubscriptionRecord(rec.OwnerID(), rec.CardID(), created.SubscriptionRef, &customerRef, created.NextBillingAt)
	if err != nil {
		return err
	}
	if err := r.subscriptions.Upsert(ctx, sub); err != nil {
		return err
	}

	r.logger.Infow("subscription created",
		"payment_id", rec.ID(),
		"card_id", rec.CardID(),
		"subscription_ref", created.SubscriptionRef,
	)
	return nil
}

func (r *Reconciler) customerRef(ctx context.Context, rec *payment.PaymentRecord) (string, error) {
	if ref := rec.GatewayCustomerRef(); ref != nil && *ref != "" {
		return *ref, nil
	}

	card, err := r.cards.GetCard(ctx, rec.CardID())
	if err != nil {
		return "", fmt.Errorf("failed to load card: %w", err)
	}

	customer, err := r.gateway.FindOrCreateCustomer(ctx, paymentgateway.CustomerRequest{
		Email: card.ContactEmail,
		Metadata: map[string]string{
			paymentgateway.MetadataOwnerID: strconv.FormatUint(uint64(rec.OwnerID()), 10),
		},
	})
	if err != nil {
		return "", err
	}

	if err := r.payments.SetCustomerRef(ctx, rec.ID(), customer.Ref); err != nil {
		return "", err
	}
	return customer.Ref, nil
}

func (r *Reconciler) logDecision(rec *payment.PaymentRecord, sig Signal, decision payment.Decision, transitioned bool) {
	fields := []interface{}{
		"payment_id", rec.ID(),
		"card_id", rec.CardID(),
		"source", sig.Source,
		"outcome", sig.Outcome,
		"status", rec.Status(),
		"decision", decision,
	}

	switch {
	case decision == payment.DecisionConflict:
		r.logger.Warnw("ignored signal conflicting with terminal status", fields...)
	case transitioned:
		r.logger.Infow("payment record transitioned", fields...)
	default:
		r.logger.Debugw("payment signal absorbed", fields...)
	}
}
