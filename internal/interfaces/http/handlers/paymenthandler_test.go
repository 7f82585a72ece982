package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizcard/internal/interfaces/http/handlers/testutil"
	"bizcard/internal/shared/errors"
)

func TestPaymentHandler_GetPayment(t *testing.T) {
	mockUC := &mockGetPaymentUC{result: completedCardPayment()}
	handler := NewPaymentHandler(mockUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/payments/pay_test123", nil)
	testutil.SetURLParam(c, "id", "pay_test123")

	handler.GetPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pay_test123", mockUC.lastSID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data PaymentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "completed", data.Status)
	assert.Equal(t, "card_paid", data.CardStatus)
	assert.True(t, data.IsPublished)
	require.NotNil(t, data.PaidAt)
	assert.Equal(t, "Your payment is complete.", data.Message)
}

func TestPaymentHandler_GetPayment_NotFound(t *testing.T) {
	mockUC := &mockGetPaymentUC{err: errors.NewNotFoundError("payment not found")}
	handler := NewPaymentHandler(mockUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/payments/pay_missing", nil)
	testutil.SetURLParam(c, "id", "pay_missing")

	handler.GetPayment(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_ConfirmPayment(t *testing.T) {
	mockUC := &mockConfirmPaymentUC{result: completedCardPayment()}
	handler := NewPaymentHandler(nil, mockUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/pay_test123/confirm", ConfirmPaymentRequest{IntentRef: "pi_123"})
	c.Request.Header.Set("Accept-Language", "ko")
	testutil.SetURLParam(c, "id", "pay_test123")

	handler.ConfirmPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pay_test123", mockUC.lastCmd.PaymentSID)
	assert.Equal(t, "pi_123", mockUC.lastCmd.IntentRef)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data PaymentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "결제가 완료되었습니다.", data.Message)
}

func TestPaymentHandler_ConfirmPayment_EmptyBody(t *testing.T) {
	mockUC := &mockConfirmPaymentUC{result: pendingCardPayment()}
	handler := NewPaymentHandler(nil, mockUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/pay_test123/confirm", nil)
	testutil.SetURLParam(c, "id", "pay_test123")

	handler.ConfirmPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mockUC.lastCmd.IntentRef)
}

func TestPaymentHandler_ConfirmPayment_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRetry  bool
	}{
		{"rate limited", errors.NewRateLimitedError("too many confirmation requests"), http.StatusTooManyRequests, true},
		{"gateway unavailable", errors.NewUnavailableError("payment gateway temporarily unavailable"), http.StatusServiceUnavailable, true},
		{"intent mismatch", errors.NewValidationError("intent does not belong to this payment"), http.StatusBadRequest, false},
		{"not found", errors.NewNotFoundError("payment not found"), http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPaymentHandler(nil, &mockConfirmPaymentUC{err: tt.err}, testutil.NewMockLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/pay_test123/confirm", nil)
			testutil.SetURLParam(c, "id", "pay_test123")

			handler.ConfirmPayment(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantRetry {
				assert.NotEmpty(t, w.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestPaymentHandler_ConfirmPayment_RateLimitLocalized(t *testing.T) {
	handler := NewPaymentHandler(nil, &mockConfirmPaymentUC{err: errors.NewRateLimitedError("too many confirmation requests")}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/pay_test123/confirm", nil)
	c.Request.Header.Set("Accept-Language", "en-US")
	testutil.SetURLParam(c, "id", "pay_test123")

	handler.ConfirmPayment(c)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Too many status checks. Please wait a moment.", resp.Error.Message)
}
