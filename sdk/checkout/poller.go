package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotSettled is returned when the attempt budget runs out while the
// payment is still pending. The webhook or sweeper may still settle it.
var ErrNotSettled = errors.New("payment not settled within attempt budget")

// ErrPaymentFailed is returned with a failed payment. The server closes a
// failed payment's gateway intent, so a retry needs a new CreateCheckout.
var ErrPaymentFailed = errors.New("payment failed, start a new checkout to retry")

// PollConfig bounds the client confirmation loop.
type PollConfig struct {
	// MaxAttempts is the number of confirm calls made before giving up.
	MaxAttempts int
	// Interval is the wait before the second attempt.
	Interval time.Duration
	// Backoff multiplies the wait after each attempt. Values below 1 are treated as 1.
	Backoff float64
	// MaxInterval caps the wait between attempts.
	MaxInterval time.Duration
}

// DefaultPollConfig re-checks every two seconds for about half a minute.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MaxAttempts: 15,
		Interval:    2 * time.Second,
		Backoff:     1,
		MaxInterval: 10 * time.Second,
	}
}

func (p PollConfig) normalize() PollConfig {
	def := DefaultPollConfig()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Interval <= 0 {
		p.Interval = def.Interval
	}
	if p.Backoff < 1 {
		p.Backoff = 1
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = def.MaxInterval
	}
	if p.MaxInterval < p.Interval {
		p.MaxInterval = p.Interval
	}
	return p
}

// confirmer is the subset of Client used by Poller.
type confirmer interface {
	ConfirmPayment(ctx context.Context, paymentID, intentRef string) (*Payment, error)
}

// Poller drives ConfirmPayment until the payment settles or the budget runs out.
type Poller struct {
	client confirmer
	config PollConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewPoller(client *Client, config PollConfig) *Poller {
	return newPoller(client, config)
}

func newPoller(client confirmer, config PollConfig) *Poller {
	return &Poller{
		client: client,
		config: config.normalize(),
		sleep:  sleepContext,
	}
}

// WaitForSettlement confirms the payment until it is completed or failed.
// Retryable API errors count against the budget and honor Retry-After;
// other errors stop the loop. A failed payment is returned with
// ErrPaymentFailed, and on ErrNotSettled the last observed payment is
// returned alongside the error.
func (p *Poller) WaitForSettlement(ctx context.Context, paymentID, intentRef string) (*Payment, error) {
	var last *Payment
	wait := p.config.Interval

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		payment, err := p.client.ConfirmPayment(ctx, paymentID, intentRef)
		delay := wait
		switch {
		case err == nil:
			last = payment
			if payment.Status == StatusFailed {
				return payment, ErrPaymentFailed
			}
			if payment.Settled() {
				return payment, nil
			}
		case IsRetryable(err):
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > delay {
				delay = apiErr.RetryAfter
			}
		default:
			return last, err
		}

		if attempt == p.config.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			return last, err
		}
		wait = p.next(wait)
	}

	return last, fmt.Errorf("%w: %d attempts", ErrNotSettled, p.config.MaxAttempts)
}

func (p *Poller) next(wait time.Duration) time.Duration {
	next := time.Duration(float64(wait) * p.config.Backoff)
	if next > p.config.MaxInterval {
		return p.config.MaxInterval
	}
	return next
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
