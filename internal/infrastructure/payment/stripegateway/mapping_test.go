package stripegateway

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74"

	"bizcard/internal/application/payment/paymentgateway"
	vo "bizcard/internal/domain/payment/valueobjects"
	subvo "bizcard/internal/domain/subscription/valueobjects"
)

func TestIntentOutcome(t *testing.T) {
	tests := []struct {
		status stripe.PaymentIntentStatus
		err    *stripe.Error
		want   vo.Outcome
	}{
		{stripe.PaymentIntentStatusSucceeded, nil, vo.OutcomeSucceeded},
		{stripe.PaymentIntentStatusCanceled, nil, vo.OutcomeFailed},
		{stripe.PaymentIntentStatusProcessing, nil, vo.OutcomePending},
		{stripe.PaymentIntentStatusRequiresAction, nil, vo.OutcomePending},
		{stripe.PaymentIntentStatusRequiresConfirmation, nil, vo.OutcomePending},
		{stripe.PaymentIntentStatusRequiresPaymentMethod, nil, vo.OutcomePending},
		{stripe.PaymentIntentStatusRequiresPaymentMethod, &stripe.Error{Code: stripe.ErrorCodeCardDeclined}, vo.OutcomeFailed},
		{stripe.PaymentIntentStatus("brand_new_status"), nil, vo.OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, _ := IntentOutcome(&stripe.PaymentIntent{Status: tt.status, LastPaymentError: tt.err})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubscriptionStatus(t *testing.T) {
	assert.Equal(t, subvo.StatusActive, SubscriptionStatus(stripe.SubscriptionStatusActive))
	assert.Equal(t, subvo.StatusActive, SubscriptionStatus(stripe.SubscriptionStatusTrialing))
	assert.Equal(t, subvo.StatusActive, SubscriptionStatus(stripe.SubscriptionStatusPastDue))
	assert.Equal(t, subvo.StatusCancelled, SubscriptionStatus(stripe.SubscriptionStatusCanceled))
	assert.Equal(t, subvo.StatusCancelled, SubscriptionStatus(stripe.SubscriptionStatusIncompleteExpired))
	assert.Equal(t, subvo.StatusCancelled, SubscriptionStatus(stripe.SubscriptionStatusUnpaid))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"network", errors.New("dial tcp: i/o timeout"), paymentgateway.ErrTransient},
		{"rate limited", &stripe.Error{HTTPStatusCode: http.StatusTooManyRequests, Type: stripe.ErrorTypeInvalidRequest}, paymentgateway.ErrTransient},
		{"server error", &stripe.Error{HTTPStatusCode: http.StatusBadGateway}, paymentgateway.ErrTransient},
		{"api error", &stripe.Error{HTTPStatusCode: http.StatusOK, Type: stripe.ErrorTypeAPI}, paymentgateway.ErrTransient},
		{"card declined", &stripe.Error{HTTPStatusCode: http.StatusPaymentRequired, Type: stripe.ErrorTypeCard, Code: stripe.ErrorCodeCardDeclined}, paymentgateway.ErrPermanent},
		{"invalid request", &stripe.Error{HTTPStatusCode: http.StatusBadRequest, Type: stripe.ErrorTypeInvalidRequest}, paymentgateway.ErrPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError("op", tt.err), tt.want)
		})
	}
}
