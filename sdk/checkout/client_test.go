package checkout

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_CreateCheckout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/checkouts", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateCheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, uint(7), req.CardID)
		assert.Equal(t, "card", req.Method)

		writeJSON(t, w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "checkout created",
			"data": map[string]any{
				"payment": map[string]any{
					"payment_id":          "pay_abc",
					"card_id":             7,
					"status":              "pending",
					"total_minor":         33000,
					"currency":            "krw",
					"card_payment_status": "unpaid",
					"is_published":        false,
				},
				"client_token": "pi_1_secret",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/api/")
	checkout, err := client.CreateCheckout(context.Background(), &CreateCheckoutRequest{
		OwnerID: 1,
		CardID:  7,
		Kind:    "new_subscriber_initial",
		Method:  "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", checkout.ClientToken)
	require.NotNil(t, checkout.Payment)
	assert.Equal(t, "pay_abc", checkout.Payment.PaymentID)
	assert.Equal(t, int64(33000), checkout.Payment.TotalMinor)
	assert.False(t, checkout.Payment.Settled())
}

func TestClient_ConfirmPayment(t *testing.T) {
	t.Run("sends intent ref and decodes settled payment", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/payments/pay_abc/confirm", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"intent_ref":"pi_1"}`, string(body))

			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"payment_id":          "pay_abc",
					"status":              "completed",
					"paid_at":             "2026-03-02T10:00:00+09:00",
					"card_payment_status": "paid",
					"is_published":        true,
				},
			})
		}))
		defer srv.Close()

		payment, err := NewClient(srv.URL+"/api").ConfirmPayment(context.Background(), "pay_abc", "pi_1")
		require.NoError(t, err)
		assert.True(t, payment.Settled())
		assert.True(t, payment.IsPublished)
		require.NotNil(t, payment.PaidAt)
		assert.Equal(t, time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC), payment.PaidAt.UTC())
	})

	t.Run("omits body without intent ref", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, int64(0), r.ContentLength)
			assert.Empty(t, r.Header.Get("Content-Type"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"payment_id": "pay_abc", "status": "pending"},
			})
		}))
		defer srv.Close()

		payment, err := NewClient(srv.URL).ConfirmPayment(context.Background(), "pay_abc", "")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, payment.Status)
	})

	t.Run("rate limited error carries retry after", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "3")
			writeJSON(t, w, http.StatusTooManyRequests, map[string]any{
				"success": false,
				"error":   map[string]any{"type": "rate_limited", "message": "too many requests"},
			})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).ConfirmPayment(context.Background(), "pay_abc", "")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, "rate_limited", apiErr.Type)
		assert.Equal(t, 3*time.Second, apiErr.RetryAfter)
		assert.True(t, IsRetryable(err))
	})

	t.Run("not found is not retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   map[string]any{"type": "not_found", "message": "payment not found"},
			})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).ConfirmPayment(context.Background(), "missing", "")
		require.Error(t, err)
		assert.False(t, IsRetryable(err))
		assert.Contains(t, err.Error(), "payment not found")
	})
}

func TestClient_GetPaymentEscapesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/a%2Fb", r.URL.EscapedPath())
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"payment_id": "a/b", "status": "failed"},
		})
	}))
	defer srv.Close()

	payment, err := NewClient(srv.URL).GetPayment(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, payment.Status)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, 2*time.Second, parseRetryAfter("2"))
}
