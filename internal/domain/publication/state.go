package publication

import (
	"context"
	"errors"
	"time"

	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
)

var ErrCardNotFound = errors.New("card publication not found")

// State is the publication view of a card.
type State struct {
	PaymentStatus PaymentStatus
	IsPublished   bool
}

// Consistent reports whether the state satisfies the open rule: a published
// card must have a paid status.
func (s State) Consistent() bool {
	return !s.IsPublished || s.PaymentStatus.IsPaid()
}

// Next returns the state after applying a new payment status. It never
// publishes a card and closes any card whose status leaves the paid set.
// healed is true when a published card with a non-paid status was closed.
func Next(prev State, status PaymentStatus) (next State, healed bool) {
	next = State{PaymentStatus: status, IsPublished: prev.IsPublished}
	if next.IsPublished && !status.IsPaid() {
		next.IsPublished = false
		healed = true
	}
	return next, healed
}

// DeriveStatus computes the authoritative card status from all of its payment
// records. The earliest completed record decides the paid flavour, so a late
// signal on another record cannot change it. Without a completed record, a
// pending bank transfer yields bank_pending.
func DeriveStatus(records []*payment.PaymentRecord) PaymentStatus {
	var earliest *payment.PaymentRecord
	bankPending := false

	for _, r := range records {
		switch r.Status() {
		case vo.PaymentStatusCompleted:
			if earliest == nil || paidBefore(r, earliest) {
				earliest = r
			}
		case vo.PaymentStatusPending:
			if r.Method() == vo.PaymentMethodBankTransfer {
				bankPending = true
			}
		}
	}

	if earliest != nil {
		return paidStatusFor(earliest)
	}
	if bankPending {
		return PaymentStatusBankPending
	}
	return PaymentStatusUnpaid
}

func paidStatusFor(r *payment.PaymentRecord) PaymentStatus {
	if r.Method() == vo.PaymentMethodCard {
		return PaymentStatusCardPaid
	}
	if via := r.SettledVia(); via != nil && *via == vo.SettlementChannelOperator {
		return PaymentStatusBankPaid
	}
	return PaymentStatusGatewaySettled
}

func paidBefore(a, b *payment.PaymentRecord) bool {
	at, bt := paidTime(a), paidTime(b)
	if at.Equal(bt) {
		return a.ID() < b.ID()
	}
	return at.Before(bt)
}

func paidTime(r *payment.PaymentRecord) time.Time {
	if r.PaidAt() != nil {
		return *r.PaidAt()
	}
	return r.CreatedAt()
}

// Card is the publication row of a card plus the contact details issuance
// notifications are sent to.
type Card struct {
	CardID       uint
	OwnerID      uint
	ContactEmail string
	State        State
	PublishedAt  *time.Time
}

// CardPublicationStore is the card side of the publication contract. Card
// content lives elsewhere; this store only holds the publication columns.
type CardPublicationStore interface {
	// EnsureCard creates the publication row for a card if it does not exist.
	// An existing row keeps its state; only a non-empty contact email is updated.
	EnsureCard(ctx context.Context, card Card) error
	GetCard(ctx context.Context, cardID uint) (*Card, error)
	GetPublicationState(ctx context.Context, cardID uint) (State, error)
	SetPublicationState(ctx context.Context, cardID uint, state State) error
	// CompareAndSetPublicationState writes next only if the stored state still
	// equals prev.
	CompareAndSetPublicationState(ctx context.Context, cardID uint, prev, next State) (bool, error)
	// PublishIfPaid opens the card only while its stored status is in the paid set.
	PublishIfPaid(ctx context.Context, cardID uint) (bool, error)
}
