package paymentgateway

import (
	"context"
	"errors"
	"time"

	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/subscription"
	subvo "bizcard/internal/domain/subscription/valueobjects"
)

// Error classes every gateway implementation wraps its failures in.
var (
	// ErrTransient covers network failures, timeouts, rate limits and gateway
	// 5xx responses. Callers may retry and must not change local state.
	ErrTransient = errors.New("transient gateway error")
	// ErrPermanent is a rejection the gateway will repeat on retry.
	ErrPermanent = errors.New("gateway rejected request")
	// ErrInvalidSignature is returned when a webhook does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedEvent is returned when a verified webhook cannot be decoded.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// Metadata keys written on gateway objects so webhooks can be traced back
// to local records.
const (
	MetadataPaymentRecordID = "payment_record_id"
	MetadataPaymentSID      = "payment_sid"
	MetadataCardID          = "card_id"
	MetadataOwnerID         = "owner_id"
)

// PaymentGateway is a stateless adapter over the external payment gateway.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error)
	FetchStatus(ctx context.Context, intentRef string) (*IntentStatus, error)
	// CancelIntent closes an intent so it can no longer be confirmed.
	CancelIntent(ctx context.Context, intentRef string) error
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*CreateSubscriptionResponse, error)
	// FindOrCreateCustomer returns the existing customer for the email or
	// creates one. Created reports which happened.
	FindOrCreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
}

// WebhookVerifier verifies and decodes inbound webhook payloads.
type WebhookVerifier interface {
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

type CreateIntentRequest struct {
	AmountMinor    int64
	Currency       string
	MethodHint     vo.PaymentMethod
	CustomerRef    string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type CreateIntentResponse struct {
	IntentRef     string
	ClientToken   string
	GatewayStatus string
	Outcome       vo.Outcome
}

// IntentStatus is a gateway intent after vocabulary mapping.
type IntentStatus struct {
	IntentRef     string
	GatewayStatus string
	Outcome       vo.Outcome
	FailureReason string
	Metadata      map[string]string
}

type CreateSubscriptionRequest struct {
	CustomerRef    string
	PriceRef       string
	Metadata       map[string]string
	IdempotencyKey string
}

type CreateSubscriptionResponse struct {
	SubscriptionRef string
	Status          subvo.SubscriptionStatus
	NextBillingAt   *time.Time
}

type CustomerRequest struct {
	Email    string
	Metadata map[string]string
}

type Customer struct {
	Ref     string
	Created bool
}

// EventKind groups webhook events by the record they affect.
type EventKind string

const (
	EventKindIntent       EventKind = "intent"
	EventKindSubscription EventKind = "subscription"
	EventKindIgnored      EventKind = "ignored"
)

// WebhookEvent is a verified gateway event. Exactly one of Intent and
// Subscription is set unless Kind is EventKindIgnored.
type WebhookEvent struct {
	ID           string
	Type         string
	Kind         EventKind
	CreatedAt    time.Time
	Intent       *IntentStatus
	Subscription *subscription.LifecycleEvent
}
