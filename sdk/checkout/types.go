// Package checkout provides a Go SDK for the bizcard checkout and payment
// confirmation API.
package checkout

import "time"

// Payment status values reported by the API.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// CreateCheckoutRequest starts a payment for a card. Prices are set by the server.
type CreateCheckoutRequest struct {
	OwnerID      uint   `json:"owner_id"`
	CardID       uint   `json:"card_id"`
	Kind         string `json:"kind"`
	Method       string `json:"method"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Payment is the server's view of a payment record and its card.
type Payment struct {
	PaymentID         string     `json:"payment_id"`
	CardID            uint       `json:"card_id"`
	Kind              string     `json:"kind"`
	Method            string     `json:"method"`
	Status            string     `json:"status"`
	AmountMinor       int64      `json:"amount_minor"`
	TaxMinor          int64      `json:"tax_minor"`
	TotalMinor        int64      `json:"total_minor"`
	Currency          string     `json:"currency"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	CardPaymentStatus string     `json:"card_payment_status"`
	IsPublished       bool       `json:"is_published"`
	Message           string     `json:"message,omitempty"`
}

// Settled reports whether the payment reached a terminal status.
func (p *Payment) Settled() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

// Checkout is the result of CreateCheckout. ClientToken is empty for methods
// that do not complete through the gateway UI.
type Checkout struct {
	Payment     *Payment `json:"payment"`
	ClientToken string   `json:"client_token,omitempty"`
}

type confirmRequest struct {
	IntentRef string `json:"intent_ref,omitempty"`
}

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
