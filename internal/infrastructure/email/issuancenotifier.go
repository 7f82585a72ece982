package email

import (
	"context"
	"fmt"
	"strings"

	"bizcard/internal/domain/payment"
	"bizcard/internal/domain/publication"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/logger"
)

type cardReader interface {
	GetCard(ctx context.Context, cardID uint) (*publication.Card, error)
}

type paymentLister interface {
	ListByCardID(ctx context.Context, cardID uint) ([]*payment.PaymentRecord, error)
}

type IssuanceNotifierConfig struct {
	// CardURLFormat has a single %d for the card ID.
	CardURLFormat string
	// OpsAddress receives a blind copy of every issuance mail when set.
	OpsAddress string
}

// IssuanceNotifier tells the card owner that the card is live.
type IssuanceNotifier struct {
	cards    cardReader
	payments paymentLister
	sender   Sender
	renderer *bodyRenderer
	config   IssuanceNotifierConfig
	logger   logger.Interface
}

func NewIssuanceNotifier(cards cardReader, payments paymentLister, sender Sender, cfg IssuanceNotifierConfig, log logger.Interface) *IssuanceNotifier {
	return &IssuanceNotifier{
		cards:    cards,
		payments: payments,
		sender:   sender,
		renderer: newBodyRenderer(),
		config:   cfg,
		logger:   log,
	}
}

func (n *IssuanceNotifier) NotifyIssuance(ctx context.Context, cardID uint, artifactRef string) error {
	card, err := n.cards.GetCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to load card %d: %w", cardID, err)
	}

	to := card.ContactEmail
	var bcc []string
	if n.config.OpsAddress != "" {
		bcc = append(bcc, n.config.OpsAddress)
	}
	if to == "" {
		if len(bcc) == 0 {
			n.logger.Warnw("card has no contact email, skipping issuance notification", "card_id", cardID)
			return nil
		}
		to, bcc = bcc[0], nil
	}

	records, err := n.payments.ListByCardID(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to list payments for card %d: %w", cardID, err)
	}

	body := n.body(card, paidRecord(records), artifactRef)
	htmlBody, err := n.renderer.ToHTML(body)
	if err != nil {
		n.logger.Warnw("failed to render issuance email, sending plain text", "card_id", cardID, "error", err)
		htmlBody = ""
	}

	if err := n.sender.Send(ctx, Message{
		To:        to,
		Bcc:       bcc,
		Subject:   fmt.Sprintf("Your business card #%d is live", cardID),
		PlainBody: body,
		HTMLBody:  htmlBody,
	}); err != nil {
		return err
	}

	n.logger.Infow("issuance notification sent", "card_id", cardID, "to", to)
	return nil
}

func (n *IssuanceNotifier) body(card *publication.Card, rec *payment.PaymentRecord, artifactRef string) string {
	var b strings.Builder

	b.WriteString("## Your business card is live\n\n")
	fmt.Fprintf(&b, "Card **#%d** is now published at %s\n\n", card.CardID, fmt.Sprintf(n.config.CardURLFormat, card.CardID))

	if rec != nil {
		amount := rec.Amount()
		fmt.Fprintf(&b, "| | |\n|---|---|\n")
		fmt.Fprintf(&b, "| Payment | %s |\n", rec.SID())
		fmt.Fprintf(&b, "| Amount | %s |\n", FormatAmount(amount.AmountMinor(), amount.Currency()))
		fmt.Fprintf(&b, "| Tax | %s |\n", FormatAmount(amount.TaxMinor(), amount.Currency()))
		fmt.Fprintf(&b, "| Total | %s |\n", FormatAmount(amount.TotalMinor(), amount.Currency()))
		if paidAt := rec.PaidAt(); paidAt != nil {
			fmt.Fprintf(&b, "| Paid at | %s |\n", biztime.FormatInBizTimezone(*paidAt, "2006-01-02 15:04 MST"))
		}
		b.WriteString("\n")
	}

	if strings.HasPrefix(artifactRef, "http://") || strings.HasPrefix(artifactRef, "https://") {
		fmt.Fprintf(&b, "Download your QR code: %s\n", artifactRef)
	} else {
		b.WriteString("Your QR code is ready in the app.\n")
	}

	return b.String()
}

// paidRecord returns the completed payment that settled the card, if any.
func paidRecord(records []*payment.PaymentRecord) *payment.PaymentRecord {
	var paid *payment.PaymentRecord
	for _, r := range records {
		if !r.Status().IsCompleted() || r.PaidAt() == nil {
			continue
		}
		if paid == nil || r.PaidAt().Before(*paid.PaidAt()) {
			paid = r
		}
	}
	return paid
}
