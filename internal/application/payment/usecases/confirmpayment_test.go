package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizcard/internal/application/payment/paymentgateway"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
	"bizcard/internal/infrastructure/ratelimit"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/logger"
)

func newConfirmUseCase(h *harness, cache *mockStatusCache, limiter *mockRateLimiter) *ConfirmPaymentUseCase {
	if cache == nil {
		cache = &mockStatusCache{}
	}
	if limiter == nil {
		limiter = &mockRateLimiter{}
	}
	return NewConfirmPaymentUseCase(h.payments, h.cards, h.gateway, h.reconciler, cache, limiter,
		ConfirmPaymentConfig{RequestsPerMinute: 30}, logger.NewNopLogger())
}

func TestConfirmPayment_PollCompletesPayment(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")
	h.gateway.FetchStatusFunc = func(ctx context.Context, ref string) (*paymentgateway.IntentStatus, error) {
		return &paymentgateway.IntentStatus{IntentRef: ref, GatewayStatus: "succeeded", Outcome: vo.OutcomeSucceeded}, nil
	}
	uc := newConfirmUseCase(h, nil, nil)

	result, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID(), IntentRef: "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusCompleted, result.Status)
	assert.Equal(t, publication.PaymentStatusCardPaid, result.CardStatus)
	assert.True(t, result.IsPublished)

	// Terminal records answer locally.
	_, err = uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&h.gateway.fetchStatusCalls))
}

func TestConfirmPayment_CacheHit_SkipsGateway(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")

	var stored int32
	cache := &mockStatusCache{
		GetFunc: func(ctx context.Context, ref string) (*paymentgateway.IntentStatus, error) {
			return &paymentgateway.IntentStatus{IntentRef: ref, GatewayStatus: "processing", Outcome: vo.OutcomePending}, nil
		},
		SetFunc: func(ctx context.Context, status *paymentgateway.IntentStatus) error {
			atomic.AddInt32(&stored, 1)
			return nil
		},
	}
	uc := newConfirmUseCase(h, cache, nil)

	result, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusPending, result.Status)
	assert.Zero(t, atomic.LoadInt32(&h.gateway.fetchStatusCalls))
	assert.Zero(t, atomic.LoadInt32(&stored))
}

func TestConfirmPayment_CacheError_FallsThroughToGateway(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")
	cache := &mockStatusCache{
		GetFunc: func(ctx context.Context, ref string) (*paymentgateway.IntentStatus, error) {
			return nil, errors.New("redis down")
		},
	}
	uc := newConfirmUseCase(h, cache, nil)

	_, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&h.gateway.fetchStatusCalls))
}

func TestConfirmPayment_RateLimited(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")

	var gotKey string
	limiter := &mockRateLimiter{
		AllowFunc: func(ctx context.Context, key string, limit ratelimit.Limit) (bool, error) {
			gotKey = key
			return false, nil
		},
	}
	uc := newConfirmUseCase(h, nil, limiter)

	_, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeRateLimited, appErr.Type)
	assert.Equal(t, "confirm:"+rec.SID(), gotKey)
	assert.Zero(t, atomic.LoadInt32(&h.gateway.fetchStatusCalls))
}

func TestConfirmPayment_LimiterError_FailsOpen(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")
	limiter := &mockRateLimiter{
		AllowFunc: func(ctx context.Context, key string, limit ratelimit.Limit) (bool, error) {
			return false, errors.New("redis down")
		},
	}
	uc := newConfirmUseCase(h, nil, limiter)

	_, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&h.gateway.fetchStatusCalls))
}

func TestConfirmPayment_TransientGatewayError_LeavesPending(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")
	h.gateway.FetchStatusFunc = func(ctx context.Context, ref string) (*paymentgateway.IntentStatus, error) {
		return nil, fmt.Errorf("fetch status: %w", paymentgateway.ErrTransient)
	}
	uc := newConfirmUseCase(h, nil, nil)

	_, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailableError(err))
	assert.Equal(t, vo.PaymentStatusPending, h.reload(t, rec).Status())
}

func TestConfirmPayment_PermanentGatewayError_ReturnsLocalStatus(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")
	h.gateway.FetchStatusFunc = func(ctx context.Context, ref string) (*paymentgateway.IntentStatus, error) {
		return nil, fmt.Errorf("fetch status: %w: resource_missing", paymentgateway.ErrPermanent)
	}
	uc := newConfirmUseCase(h, nil, nil)

	result, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusPending, result.Status)
}

func TestConfirmPayment_Errors(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 7, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodCard, "pi_1")
	uc := newConfirmUseCase(h, nil, nil)

	_, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: "pay_missing"})
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID(), IntentRef: "pi_other"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestConfirmPayment_BankTransfer_AnswersLocally(t *testing.T) {
	h := newHarness(t)
	rec := h.createPayment(t, 9, vo.PaymentKindExistingSubscriberInitial, vo.PaymentMethodBankTransfer, "")
	_, err := h.gate.Refresh(context.Background(), 9)
	require.NoError(t, err)
	uc := newConfirmUseCase(h, nil, nil)

	result, err := uc.Execute(context.Background(), ConfirmPaymentCommand{PaymentSID: rec.SID()})
	require.NoError(t, err)
	assert.Equal(t, publication.PaymentStatusBankPending, result.CardStatus)
	assert.False(t, result.IsPublished)
	assert.Zero(t, atomic.LoadInt32(&h.gateway.fetchStatusCalls))
}
