package handlers

import (
	"time"

	"golang.org/x/text/language"

	"bizcard/internal/application/payment/usecases"
	"bizcard/internal/domain/audit"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/i18n"
)

type PaymentResponse struct {
	PaymentID     string  `json:"payment_id"`
	CardID        uint    `json:"card_id"`
	Kind          string  `json:"kind"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	AmountMinor   int64   `json:"amount_minor"`
	TaxMinor      int64   `json:"tax_minor"`
	TotalMinor    int64   `json:"total_minor"`
	Currency      string  `json:"currency"`
	PaidAt        *string `json:"paid_at,omitempty"`
	FailureReason string  `json:"failure_reason,omitempty"`
	CardStatus    string  `json:"card_payment_status"`
	IsPublished   bool    `json:"is_published"`
	Message       string  `json:"message,omitempty"`
}

func toPaymentResponse(r *usecases.PaymentStatusResult, lang language.Tag) *PaymentResponse {
	resp := &PaymentResponse{
		PaymentID:     r.SID,
		CardID:        r.CardID,
		Kind:          string(r.Kind),
		Method:        string(r.Method),
		Status:        string(r.Status),
		AmountMinor:   r.AmountMinor,
		TaxMinor:      r.TaxMinor,
		TotalMinor:    r.TotalMinor,
		Currency:      r.Currency,
		FailureReason: r.FailureReason,
		CardStatus:    string(r.CardStatus),
		IsPublished:   r.IsPublished,
		Message:       statusMessage(r.Status, lang),
	}
	if r.PaidAt != nil {
		paidAt := biztime.FormatInBizTimezone(*r.PaidAt, time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}

func statusMessage(status vo.PaymentStatus, lang language.Tag) string {
	switch status {
	case vo.PaymentStatusCompleted:
		return i18n.Sprintf(lang, i18n.KeyPaymentCompleted)
	case vo.PaymentStatusFailed:
		return i18n.Sprintf(lang, i18n.KeyPaymentFailed)
	default:
		return i18n.Sprintf(lang, i18n.KeyPaymentPending)
	}
}

type AuditEntryResponse struct {
	ID         string `json:"id"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Result     string `json:"result"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toAuditEntryResponses(entries []*audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:         e.ID,
			Actor:      e.Actor,
			Action:     e.Action,
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Result:     string(e.Result),
			Reason:     e.Reason,
			CreatedAt:  biztime.FormatInBizTimezone(e.CreatedAt, time.RFC3339),
		})
	}
	return out
}
