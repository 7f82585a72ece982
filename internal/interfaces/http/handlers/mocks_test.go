package handlers

import (
	"context"
	"time"

	"bizcard/internal/application/payment/usecases"
	"bizcard/internal/domain/audit"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreateCheckoutUC struct {
	result  *usecases.CreateCheckoutResult
	err     error
	lastCmd usecases.CreateCheckoutCommand
}

func (m *mockCreateCheckoutUC) Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*usecases.CreateCheckoutResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockGetPaymentUC struct {
	result  *usecases.PaymentStatusResult
	err     error
	lastSID string
}

func (m *mockGetPaymentUC) Execute(ctx context.Context, sid string) (*usecases.PaymentStatusResult, error) {
	m.lastSID = sid
	return m.result, m.err
}

type mockConfirmPaymentUC struct {
	result  *usecases.PaymentStatusResult
	err     error
	lastCmd usecases.ConfirmPaymentCommand
}

func (m *mockConfirmPaymentUC) Execute(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.PaymentStatusResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockHandleWebhookUC struct {
	execute       func(ctx context.Context, payload []byte, signature string) error
	lastPayload   []byte
	lastSignature string
	calls         int
}

func (m *mockHandleWebhookUC) Execute(ctx context.Context, payload []byte, signature string) error {
	m.calls++
	m.lastPayload = payload
	m.lastSignature = signature
	if m.execute != nil {
		return m.execute(ctx, payload, signature)
	}
	return nil
}

type mockForceStatusUC struct {
	result  *usecases.ForcePaymentStatusResult
	err     error
	lastCmd usecases.ForcePaymentStatusCommand
}

func (m *mockForceStatusUC) Execute(ctx context.Context, cmd usecases.ForcePaymentStatusCommand) (*usecases.ForcePaymentStatusResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockListAuditUC struct {
	result []*audit.Entry
	err    error
}

func (m *mockListAuditUC) Execute(ctx context.Context, paymentRef string) ([]*audit.Entry, error) {
	return m.result, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

func pendingCardPayment() *usecases.PaymentStatusResult {
	return &usecases.PaymentStatusResult{
		SID:         "pay_test123",
		CardID:      7,
		Kind:        vo.PaymentKindExistingSubscriberInitial,
		Method:      vo.PaymentMethodCard,
		Status:      vo.PaymentStatusPending,
		AmountMinor: 30000,
		TaxMinor:    3000,
		TotalMinor:  33000,
		Currency:    "krw",
		CardStatus:  publication.PaymentStatusUnpaid,
	}
}

func completedCardPayment() *usecases.PaymentStatusResult {
	r := pendingCardPayment()
	paidAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	r.Status = vo.PaymentStatusCompleted
	r.PaidAt = &paidAt
	r.CardStatus = publication.PaymentStatusCardPaid
	r.IsPublished = true
	return r
}
