package stripegateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v74"

	"bizcard/internal/application/payment/paymentgateway"
	vo "bizcard/internal/domain/payment/valueobjects"
	subvo "bizcard/internal/domain/subscription/valueobjects"
)

// IntentOutcome maps a Stripe payment intent onto the canonical outcome.
// A requires_payment_method intent with a recorded payment error is a failed
// attempt; without one it is still waiting for the customer.
func IntentOutcome(pi *stripe.PaymentIntent) (vo.Outcome, string) {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return vo.OutcomeSucceeded, ""
	case stripe.PaymentIntentStatusCanceled:
		return vo.OutcomeFailed, nonEmpty(string(pi.CancellationReason), "canceled")
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			return vo.OutcomeFailed, paymentErrorReason(pi.LastPaymentError)
		}
		return vo.OutcomePending, ""
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusRequiresConfirmation:
		return vo.OutcomePending, ""
	default:
		return vo.OutcomeUnknown, ""
	}
}

// SubscriptionStatus maps a Stripe subscription status. Anything that still
// bills the customer is active.
func SubscriptionStatus(s stripe.SubscriptionStatus) subvo.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusCanceled,
		stripe.SubscriptionStatusIncompleteExpired,
		stripe.SubscriptionStatusUnpaid:
		return subvo.StatusCancelled
	default:
		return subvo.StatusActive
	}
}

func intentStatus(pi *stripe.PaymentIntent) *paymentgateway.IntentStatus {
	outcome, reason := IntentOutcome(pi)
	return &paymentgateway.IntentStatus{
		IntentRef:     pi.ID,
		GatewayStatus: string(pi.Status),
		Outcome:       outcome,
		FailureReason: reason,
		Metadata:      pi.Metadata,
	}
}

// classifyError wraps err in paymentgateway.ErrTransient or ErrPermanent.
// Anything that is not a Stripe API error (timeouts, connection resets) is
// transient.
func classifyError(op string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%s: %w: %v", op, paymentgateway.ErrTransient, err)
	}

	if stripeErr.HTTPStatusCode == http.StatusTooManyRequests ||
		stripeErr.HTTPStatusCode >= http.StatusInternalServerError ||
		stripeErr.Type == stripe.ErrorTypeAPI ||
		stripeErr.Type == stripe.ErrorTypeIdempotency {
		return fmt.Errorf("%s: %w: %s", op, paymentgateway.ErrTransient, stripeErr.Msg)
	}

	return fmt.Errorf("%s: %w: %s", op, paymentgateway.ErrPermanent, paymentErrorReason(stripeErr))
}

func paymentErrorReason(e *stripe.Error) string {
	if e.DeclineCode != "" {
		return string(e.DeclineCode)
	}
	if e.Code != "" {
		return string(e.Code)
	}
	return nonEmpty(e.Msg, string(e.Type))
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
