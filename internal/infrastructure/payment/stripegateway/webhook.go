package stripegateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"bizcard/internal/application/payment/paymentgateway"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/subscription"
)

const defaultTolerance = webhook.DefaultTolerance

// Event types the service reacts to. Every other type is acknowledged and ignored.
const (
	EventIntentSucceeded     = "payment_intent.succeeded"
	EventIntentPaymentFailed = "payment_intent.payment_failed"
	EventIntentCanceled      = "payment_intent.canceled"
	EventIntentProcessing    = "payment_intent.processing"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// WebhookVerifier checks Stripe-Signature headers and decodes events.
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	return &WebhookVerifier{secret: secret, tolerance: tolerance}
}

func (v *WebhookVerifier) ParseWebhook(payload []byte, signatureHeader string) (*paymentgateway.WebhookEvent, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", paymentgateway.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", paymentgateway.ErrMalformedEvent, err)
	}
	if evt.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", paymentgateway.ErrMalformedEvent, evt.ID)
	}

	out := &paymentgateway.WebhookEvent{
		ID:        evt.ID,
		Type:      string(evt.Type),
		Kind:      paymentgateway.EventKindIgnored,
		CreatedAt: time.Unix(evt.Created, 0).UTC(),
	}

	switch out.Type {
	case EventIntentSucceeded, EventIntentPaymentFailed, EventIntentCanceled, EventIntentProcessing:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", paymentgateway.ErrMalformedEvent, err)
		}
		status := intentStatus(&pi)
		status.Outcome, status.FailureReason = eventOutcome(out.Type, &pi)
		out.Kind = paymentgateway.EventKindIntent
		out.Intent = status

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", paymentgateway.ErrMalformedEvent, err)
		}
		out.Kind = paymentgateway.EventKindSubscription
		out.Subscription = lifecycleEvent(out.Type, &sub, out.CreatedAt)
	}

	return out, nil
}

// eventOutcome trusts the event type over the embedded intent status: a
// payment_failed intent is already back in requires_payment_method.
func eventOutcome(eventType string, pi *stripe.PaymentIntent) (vo.Outcome, string) {
	switch eventType {
	case EventIntentSucceeded:
		return vo.OutcomeSucceeded, ""
	case EventIntentPaymentFailed:
		if pi.LastPaymentError != nil {
			return vo.OutcomeFailed, paymentErrorReason(pi.LastPaymentError)
		}
		return vo.OutcomeFailed, "payment_failed"
	case EventIntentCanceled:
		return vo.OutcomeFailed, nonEmpty(string(pi.CancellationReason), "canceled")
	default:
		return vo.OutcomePending, ""
	}
}

func lifecycleEvent(eventType string, sub *stripe.Subscription, occurredAt time.Time) *subscription.LifecycleEvent {
	status := SubscriptionStatus(sub.Status)
	if eventType == EventSubscriptionDeleted {
		status = SubscriptionStatus(stripe.SubscriptionStatusCanceled)
	}

	ev := &subscription.LifecycleEvent{
		GatewaySubscriptionRef: sub.ID,
		Status:                 status,
		NextBillingAt:          unixTime(sub.CurrentPeriodEnd),
		CancelledAt:            unixTime(sub.CanceledAt),
		OccurredAt:             occurredAt,
		CardID:                 metadataUint(sub.Metadata, paymentgateway.MetadataCardID),
		OwnerID:                metadataUint(sub.Metadata, paymentgateway.MetadataOwnerID),
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		ref := sub.Customer.ID
		ev.GatewayCustomerRef = &ref
	}
	return ev
}

func metadataUint(md map[string]string, key string) uint {
	v, err := strconv.ParseUint(md[key], 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
