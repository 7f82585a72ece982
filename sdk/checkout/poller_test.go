package checkout

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedConfirmer struct {
	responses []confirmResponse
	calls     int
}

type confirmResponse struct {
	payment *Payment
	err     error
}

func (s *scriptedConfirmer) ConfirmPayment(ctx context.Context, paymentID, intentRef string) (*Payment, error) {
	// The last response repeats once the script runs out.
	i := min(s.calls, len(s.responses)-1)
	s.calls++
	return s.responses[i].payment, s.responses[i].err
}

func pending() confirmResponse {
	return confirmResponse{payment: &Payment{PaymentID: "pay_1", Status: StatusPending}}
}

func newTestPoller(c confirmer, cfg PollConfig) (*Poller, *[]time.Duration) {
	var waits []time.Duration
	p := newPoller(c, cfg)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return p, &waits
}

func TestPoller_StopsOnSettlement(t *testing.T) {
	c := &scriptedConfirmer{responses: []confirmResponse{
		pending(),
		pending(),
		{payment: &Payment{PaymentID: "pay_1", Status: StatusCompleted, IsPublished: true}},
	}}
	p, waits := newTestPoller(c, PollConfig{MaxAttempts: 10, Interval: time.Second, Backoff: 2, MaxInterval: 3 * time.Second})

	payment, err := p.WaitForSettlement(context.Background(), "pay_1", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, payment.Status)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestPoller_FailedPaymentNeedsNewCheckout(t *testing.T) {
	c := &scriptedConfirmer{responses: []confirmResponse{
		pending(),
		{payment: &Payment{PaymentID: "pay_1", Status: StatusFailed, FailureReason: "card_declined"}},
		{payment: &Payment{PaymentID: "pay_1", Status: StatusCompleted}},
	}}
	p, _ := newTestPoller(c, PollConfig{MaxAttempts: 10, Interval: time.Second})

	payment, err := p.WaitForSettlement(context.Background(), "pay_1", "pi_1")
	require.ErrorIs(t, err, ErrPaymentFailed)
	require.NotNil(t, payment)
	assert.Equal(t, StatusFailed, payment.Status)
	assert.Equal(t, "card_declined", payment.FailureReason)
	assert.Equal(t, 2, c.calls, "polling stops at the first failure")
}

func TestPoller_BudgetExhausted(t *testing.T) {
	c := &scriptedConfirmer{responses: []confirmResponse{pending()}}
	p, waits := newTestPoller(c, PollConfig{MaxAttempts: 4, Interval: time.Second, Backoff: 2, MaxInterval: 3 * time.Second})

	payment, err := p.WaitForSettlement(context.Background(), "pay_1", "")
	require.ErrorIs(t, err, ErrNotSettled)
	require.NotNil(t, payment)
	assert.Equal(t, StatusPending, payment.Status)
	// No wait after the last attempt; backoff is capped.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, *waits)
}

func TestPoller_HonorsRetryAfter(t *testing.T) {
	c := &scriptedConfirmer{responses: []confirmResponse{
		{err: &APIError{StatusCode: http.StatusTooManyRequests, RetryAfter: 5 * time.Second}},
		{payment: &Payment{PaymentID: "pay_1", Status: StatusFailed}},
	}}
	p, waits := newTestPoller(c, PollConfig{MaxAttempts: 3, Interval: time.Second})

	payment, err := p.WaitForSettlement(context.Background(), "pay_1", "")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, payment.Status)
	assert.Equal(t, []time.Duration{5 * time.Second}, *waits)
}

func TestPoller_StopsOnPermanentError(t *testing.T) {
	notFound := &APIError{StatusCode: http.StatusNotFound, Message: "payment not found"}
	c := &scriptedConfirmer{responses: []confirmResponse{{err: notFound}}}
	p, waits := newTestPoller(c, PollConfig{MaxAttempts: 5, Interval: time.Second})

	_, err := p.WaitForSettlement(context.Background(), "missing", "")
	assert.True(t, errors.Is(err, notFound))
	assert.Empty(t, *waits)
}

func TestPoller_ContextCancelled(t *testing.T) {
	c := &scriptedConfirmer{responses: []confirmResponse{pending()}}
	p, _ := newTestPoller(c, PollConfig{MaxAttempts: 5, Interval: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.WaitForSettlement(ctx, "pay_1", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollConfig_Normalize(t *testing.T) {
	cfg := PollConfig{Interval: 20 * time.Second, Backoff: 0.5, MaxInterval: time.Second}.normalize()

	assert.Equal(t, DefaultPollConfig().MaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, float64(1), cfg.Backoff)
	assert.Equal(t, 20*time.Second, cfg.MaxInterval)
}
