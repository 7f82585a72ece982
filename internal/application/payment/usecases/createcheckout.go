package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/i18n"
	"bizcard/internal/shared/logger"
)

type CreateCheckoutCommand struct {
	OwnerID      uint
	CardID       uint
	Kind         string
	Method       string
	ContactEmail string
	Language     language.Tag
}

type CreateCheckoutResult struct {
	Payment     *PaymentStatusResult
	ClientToken string
	// Message is a localized explanation when the checkout did not reach
	// the gateway or was declined.
	Message string
}

// PricingConfig is the server-side price list. Fees are minor units before tax.
type PricingConfig struct {
	Currency          string
	NewSubscriberFee  int64
	ExistingMemberFee int64
	TaxBasisPoints    int64
}

func (p PricingConfig) fee(kind vo.PaymentKind) int64 {
	if kind == vo.PaymentKindNewSubscriberInitial {
		return p.NewSubscriberFee
	}
	return p.ExistingMemberFee
}

type CreateCheckoutUseCase struct {
	payments   payment.PaymentRecordRepository
	cards      publication.CardPublicationStore
	gateway    paymentgateway.PaymentGateway
	gate       PublicationGate
	reconciler *Reconciler
	pricing    PricingConfig
	logger     logger.Interface
}

func NewCreateCheckoutUseCase(
	payments payment.PaymentRecordRepository,
	cards publication.CardPublicationStore,
	gateway paymentgateway.PaymentGateway,
	gate PublicationGate,
	reconciler *Reconciler,
	pricing PricingConfig,
	logger logger.Interface,
) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		payments:   payments,
		cards:      cards,
		gateway:    gateway,
		gate:       gate,
		reconciler: reconciler,
		pricing:    pricing,
		logger:     logger,
	}
}

// Execute creates a pending payment record and, for card payments, the
// gateway intent the client completes. Amounts come from the price list only.
func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, cmd CreateCheckoutCommand) (*CreateCheckoutResult, error) {
	kind, err := vo.NewPaymentKind(cmd.Kind)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid payment kind", err.Error())
	}
	method, err := vo.NewPaymentMethod(cmd.Method)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid payment method", err.Error())
	}

	amount, err := vo.NewAmountWithTax(uc.pricing.fee(kind), uc.pricing.TaxBasisPoints, uc.pricing.Currency)
	if err != nil {
		uc.logger.Errorw("invalid pricing configuration", "kind", kind, "error", err)
		return nil, apperrors.NewInternalError("pricing unavailable")
	}

	rec, err := payment.NewPaymentRecord(cmd.OwnerID, cmd.CardID, kind, method, amount)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid checkout", err.Error())
	}

	if err := uc.cards.EnsureCard(ctx, publication.Card{
		CardID:       cmd.CardID,
		OwnerID:      cmd.OwnerID,
		ContactEmail: cmd.ContactEmail,
	}); err != nil {
		return nil, err
	}

	if err := uc.payments.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	uc.logger.Infow("checkout created",
		"payment_id", rec.ID(),
		"payment_sid", rec.SID(),
		"card_id", rec.CardID(),
		"method", method,
		"total_minor", amount.TotalMinor(),
	)

	if !method.UsesGatewayIntent() {
		state, err := uc.gate.Refresh(ctx, rec.CardID())
		if err != nil {
			return nil, fmt.Errorf("failed to refresh publication state: %w", err)
		}
		return &CreateCheckoutResult{
			Payment: newPaymentStatusResult(rec, state),
			Message: i18n.Sprintf(cmd.Language, i18n.KeyPaymentPending),
		}, nil
	}

	return uc.createIntent(ctx, rec, cmd)
}

func (uc *CreateCheckoutUseCase) createIntent(ctx context.Context, rec *payment.PaymentRecord, cmd CreateCheckoutCommand) (*CreateCheckoutResult, error) {
	customerRef, err := uc.customer(ctx, rec, cmd.ContactEmail)
	if err != nil {
		return uc.gatewayFailure(ctx, rec, cmd.Language, err)
	}

	intent, err := uc.gateway.CreateIntent(ctx, paymentgateway.CreateIntentRequest{
		AmountMinor: rec.Amount().TotalMinor(),
		Currency:    rec.Amount().Currency(),
		MethodHint:  rec.Method(),
		CustomerRef: customerRef,
		Description: fmt.Sprintf("Business card %d", rec.CardID()),
		Metadata: map[string]string{
			paymentgateway.MetadataPaymentRecordID: strconv.FormatUint(uint64(rec.ID()), 10),
			paymentgateway.MetadataPaymentSID:      rec.SID(),
			paymentgateway.MetadataCardID:          strconv.FormatUint(uint64(rec.CardID()), 10),
			paymentgateway.MetadataOwnerID:         strconv.FormatUint(uint64(rec.OwnerID()), 10),
		},
		IdempotencyKey: "checkout-" + rec.SID(),
	})
	if err != nil {
		return uc.gatewayFailure(ctx, rec, cmd.Language, err)
	}

	attached, err := uc.payments.AttachIntentRef(ctx, rec.ID(), intent.IntentRef)
	if err != nil {
		return nil, fmt.Errorf("failed to attach intent ref: %w", err)
	}
	if !attached {
		// A webhook may have bound the same intent first; anything else is a bug.
		current, err := uc.payments.GetByID(ctx, rec.ID())
		if err != nil {
			return nil, err
		}
		if ref := current.GatewayIntentRef(); ref == nil || *ref != intent.IntentRef {
			return nil, apperrors.NewConflictError("payment is bound to a different intent")
		}
	}

	rec, err = uc.payments.GetByID(ctx, rec.ID())
	if err != nil {
		return nil, err
	}
	state, err := uc.cards.GetPublicationState(ctx, rec.CardID())
	if err != nil {
		return nil, err
	}

	return &CreateCheckoutResult{
		Payment:     newPaymentStatusResult(rec, state),
		ClientToken: intent.ClientToken,
	}, nil
}

func (uc *CreateCheckoutUseCase) customer(ctx context.Context, rec *payment.PaymentRecord, email string) (string, error) {
	if email == "" {
		return "", nil
	}

	customer, err := uc.gateway.FindOrCreateCustomer(ctx, paymentgateway.CustomerRequest{
		Email: email,
		Metadata: map[string]string{
			paymentgateway.MetadataOwnerID: strconv.FormatUint(uint64(rec.OwnerID()), 10),
		},
	})
	if err != nil {
		return "", err
	}

	if err := uc.payments.SetCustomerRef(ctx, rec.ID(), customer.Ref); err != nil {
		return "", err
	}
	return customer.Ref, nil
}

// gatewayFailure leaves the record pending on transient errors and fails it
// through the reconciler on a permanent rejection.
func (uc *CreateCheckoutUseCase) gatewayFailure(ctx context.Context, rec *payment.PaymentRecord, lang language.Tag, err error) (*CreateCheckoutResult, error) {
	if !errors.Is(err, paymentgateway.ErrPermanent) {
		uc.logger.Warnw("gateway unavailable during checkout", "payment_id", rec.ID(), "error", err)
		return nil, apperrors.NewUnavailableError(i18n.Sprintf(lang, i18n.KeyCheckoutUnavailable))
	}

	reason := declineReason(err)
	uc.logger.Infow("gateway rejected checkout", "payment_id", rec.ID(), "reason", reason)

	result, applyErr := uc.reconciler.Apply(ctx, rec, Signal{
		Source:        vo.SignalSourceCheckout,
		Outcome:       vo.OutcomeFailed,
		FailureReason: reason,
	})
	if applyErr != nil {
		return nil, fmt.Errorf("failed to record rejected checkout: %w", applyErr)
	}

	return &CreateCheckoutResult{
		Payment: newPaymentStatusResult(result.Record, result.Publication),
		Message: i18n.Sprintf(lang, i18n.KeyCheckoutDeclined, reason),
	}, nil
}

// declineReason pulls the gateway's reason out of a wrapped permanent error.
// Wrapped errors read "<op>: <sentinel>: <reason>".
func declineReason(err error) string {
	if _, reason, ok := strings.Cut(err.Error(), paymentgateway.ErrPermanent.Error()+": "); ok && reason != "" {
		return reason
	}
	return "declined"
}
