package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"bizcard/internal/application/payment/usecases"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/interfaces/http/handlers/testutil"
	"bizcard/internal/shared/errors"
)

func validCheckoutRequest() CreateCheckoutRequest {
	return CreateCheckoutRequest{
		OwnerID:      1,
		CardID:       7,
		Kind:         string(vo.PaymentKindExistingSubscriberInitial),
		Method:       string(vo.PaymentMethodCard),
		ContactEmail: "owner@example.com",
	}
}

func TestCheckoutHandler_CreateCheckout_Success(t *testing.T) {
	mockUC := &mockCreateCheckoutUC{result: &usecases.CreateCheckoutResult{
		Payment:     pendingCardPayment(),
		ClientToken: "pi_123_secret_abc",
	}}
	handler := NewCheckoutHandler(mockUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkouts", validCheckoutRequest())
	c.Request.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, language.Korean, mockUC.lastCmd.Language)
	assert.Equal(t, uint(7), mockUC.lastCmd.CardID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var data CreateCheckoutResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "pi_123_secret_abc", data.ClientToken)
	assert.Equal(t, "pay_test123", data.Payment.PaymentID)
	assert.Equal(t, int64(33000), data.Payment.TotalMinor)
	assert.Equal(t, "pending", data.Payment.Status)
}

func TestCheckoutHandler_CreateCheckout_Declined(t *testing.T) {
	declined := pendingCardPayment()
	declined.Status = vo.PaymentStatusFailed
	declined.FailureReason = "card_declined"
	mockUC := &mockCreateCheckoutUC{result: &usecases.CreateCheckoutResult{
		Payment: declined,
		Message: "Your payment was declined (card_declined).",
	}}
	handler := NewCheckoutHandler(mockUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkouts", validCheckoutRequest())

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data CreateCheckoutResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "failed", data.Payment.Status)
	assert.Equal(t, "Your payment was declined (card_declined).", data.Payment.Message)
}

func TestCheckoutHandler_CreateCheckout_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"missing fields", map[string]string{"kind": "new_subscriber_initial"}},
		{"unknown kind", CreateCheckoutRequest{OwnerID: 1, CardID: 7, Kind: "loan", Method: "card"}},
		{"unknown method", CreateCheckoutRequest{OwnerID: 1, CardID: 7, Kind: "new_subscriber_initial", Method: "cash"}},
		{"bad email", CreateCheckoutRequest{OwnerID: 1, CardID: 7, Kind: "new_subscriber_initial", Method: "card", ContactEmail: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockCreateCheckoutUC{}
			handler := NewCheckoutHandler(mockUC, testutil.NewMockLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/api/checkouts", tt.body)

			handler.CreateCheckout(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, mockUC.lastCmd.CardID, "use case must not run")
		})
	}
}

func TestCheckoutHandler_CreateCheckout_GatewayUnavailable(t *testing.T) {
	mockUC := &mockCreateCheckoutUC{err: errors.NewUnavailableError("The payment service is temporarily unavailable.")}
	handler := NewCheckoutHandler(mockUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkouts", validCheckoutRequest())

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "unavailable", resp.Error.Type)
}
