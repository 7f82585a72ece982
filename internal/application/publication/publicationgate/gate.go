// Package publicationgate enforces that a card is only public while its payment
// status is in the paid set.
package publicationgate

import (
	"context"
	"fmt"

	"bizcard/internal/domain/payment"
	"bizcard/internal/domain/publication"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/metrics"
)

const maxCASAttempts = 5

// Gate writes card payment status and closes cards that lose their paid
// status. It never opens a card; only issuance does.
type Gate struct {
	payments payment.PaymentRecordRepository
	cards    publication.CardPublicationStore
	logger   logger.Interface
}

func NewGate(payments payment.PaymentRecordRepository, cards publication.CardPublicationStore, log logger.Interface) *Gate {
	return &Gate{
		payments: payments,
		cards:    cards,
		logger:   log,
	}
}

// Refresh recomputes the card status from all of its payment records and
// applies it.
func (g *Gate) Refresh(ctx context.Context, cardID uint) (publication.State, error) {
	records, err := g.payments.ListByCardID(ctx, cardID)
	if err != nil {
		return publication.State{}, fmt.Errorf("failed to list payment records: %w", err)
	}
	return g.ApplyPaymentStatus(ctx, cardID, publication.DeriveStatus(records))
}

// ApplyPaymentStatus stores status for the card. When the status is outside
// the paid set the card is forced closed. Applying the same status again
// writes nothing.
func (g *Gate) ApplyPaymentStatus(ctx context.Context, cardID uint, status publication.PaymentStatus) (publication.State, error) {
	if !status.IsValid() {
		return publication.State{}, fmt.Errorf("invalid card payment status: %s", status)
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		prev, err := g.cards.GetPublicationState(ctx, cardID)
		if err != nil {
			return publication.State{}, err
		}

		next, healed := publication.Next(prev, status)
		if next == prev {
			return prev, nil
		}

		ok, err := g.cards.CompareAndSetPublicationState(ctx, cardID, prev, next)
		if err != nil {
			return publication.State{}, err
		}
		if !ok {
			continue
		}

		if healed {
			metrics.PublicationHealsTotal.Inc()
			g.logger.Warnw("closed published card without paid status",
				"card_id", cardID,
				"previous_status", prev.PaymentStatus,
				"status", status,
			)
		}
		return next, nil
	}

	return publication.State{}, fmt.Errorf("card %d publication state kept changing, gave up after %d attempts", cardID, maxCASAttempts)
}
