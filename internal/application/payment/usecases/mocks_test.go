package usecases

import (
	"context"
	"sync/atomic"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/domain/audit"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
	subvo "bizcard/internal/domain/subscription/valueobjects"
	"bizcard/internal/infrastructure/ratelimit"
)

type mockGateway struct {
	CreateIntentFunc         func(ctx context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.CreateIntentResponse, error)
	FetchStatusFunc          func(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error)
	CancelIntentFunc         func(ctx context.Context, intentRef string) error
	CreateSubscriptionFunc   func(ctx context.Context, req paymentgateway.CreateSubscriptionRequest) (*paymentgateway.CreateSubscriptionResponse, error)
	FindOrCreateCustomerFunc func(ctx context.Context, req paymentgateway.CustomerRequest) (*paymentgateway.Customer, error)

	createIntentCalls       int32
	fetchStatusCalls        int32
	cancelIntentCalls       int32
	createSubscriptionCalls int32
}

func (m *mockGateway) CreateIntent(ctx context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.CreateIntentResponse, error) {
	atomic.AddInt32(&m.createIntentCalls, 1)
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, req)
	}
	return &paymentgateway.CreateIntentResponse{
		IntentRef:     "pi_default",
		ClientToken:   "pi_default_secret",
		GatewayStatus: "requires_payment_method",
		Outcome:       vo.OutcomePending,
	}, nil
}

func (m *mockGateway) FetchStatus(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error) {
	atomic.AddInt32(&m.fetchStatusCalls, 1)
	if m.FetchStatusFunc != nil {
		return m.FetchStatusFunc(ctx, intentRef)
	}
	return &paymentgateway.IntentStatus{IntentRef: intentRef, GatewayStatus: "processing", Outcome: vo.OutcomePending}, nil
}

func (m *mockGateway) CancelIntent(ctx context.Context, intentRef string) error {
	atomic.AddInt32(&m.cancelIntentCalls, 1)
	if m.CancelIntentFunc != nil {
		return m.CancelIntentFunc(ctx, intentRef)
	}
	return nil
}

func (m *mockGateway) CreateSubscription(ctx context.Context, req paymentgateway.CreateSubscriptionRequest) (*paymentgateway.CreateSubscriptionResponse, error) {
	atomic.AddInt32(&m.createSubscriptionCalls, 1)
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, req)
	}
	return &paymentgateway.CreateSubscriptionResponse{SubscriptionRef: "sub_default", Status: subvo.StatusActive}, nil
}

func (m *mockGateway) FindOrCreateCustomer(ctx context.Context, req paymentgateway.CustomerRequest) (*paymentgateway.Customer, error) {
	if m.FindOrCreateCustomerFunc != nil {
		return m.FindOrCreateCustomerFunc(ctx, req)
	}
	return &paymentgateway.Customer{Ref: "cus_default", Created: true}, nil
}

type mockWebhookVerifier struct {
	ParseWebhookFunc func(payload []byte, signatureHeader string) (*paymentgateway.WebhookEvent, error)
}

func (m *mockWebhookVerifier) ParseWebhook(payload []byte, signatureHeader string) (*paymentgateway.WebhookEvent, error) {
	if m.ParseWebhookFunc != nil {
		return m.ParseWebhookFunc(payload, signatureHeader)
	}
	return nil, paymentgateway.ErrMalformedEvent
}

type mockArtifactGenerator struct {
	GenerateFunc func(ctx context.Context, card *publication.Card) (string, error)

	calls int32
}

func (m *mockArtifactGenerator) Generate(ctx context.Context, card *publication.Card) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, card)
	}
	return "artifacts/cards/qr.txt", nil
}

type mockNotifier struct {
	NotifyIssuanceFunc func(ctx context.Context, cardID uint, artifactRef string) error
}

func (m *mockNotifier) NotifyIssuance(ctx context.Context, cardID uint, artifactRef string) error {
	if m.NotifyIssuanceFunc != nil {
		return m.NotifyIssuanceFunc(ctx, cardID, artifactRef)
	}
	return nil
}

type mockStatusCache struct {
	GetFunc func(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error)
	SetFunc func(ctx context.Context, status *paymentgateway.IntentStatus) error
}

func (m *mockStatusCache) Get(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, intentRef)
	}
	return nil, nil
}

func (m *mockStatusCache) Set(ctx context.Context, status *paymentgateway.IntentStatus) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, status)
	}
	return nil
}

type mockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit ratelimit.Limit) (bool, error)
}

func (m *mockRateLimiter) Allow(ctx context.Context, key string, limit ratelimit.Limit) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit)
	}
	return true, nil
}

type mockAuditRepository struct {
	CreateFunc                func(ctx context.Context, entry *audit.Entry) error
	ListByPaymentRecordIDFunc func(ctx context.Context, paymentRecordID uint) ([]*audit.Entry, error)
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil
}

func (m *mockAuditRepository) ListByPaymentRecordID(ctx context.Context, paymentRecordID uint) ([]*audit.Entry, error) {
	if m.ListByPaymentRecordIDFunc != nil {
		return m.ListByPaymentRecordIDFunc(ctx, paymentRecordID)
	}
	return nil, nil
}
