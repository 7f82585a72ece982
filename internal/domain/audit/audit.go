package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/biztime"
)

const ActionForceStatus = "payment.force_status"

// Result records what a forced transition actually did.
type Result string

const (
	ResultTransitioned Result = "transitioned"
	ResultNoop         Result = "noop"
	ResultConflict     Result = "conflict"
)

// Entry is an immutable record of an operator action on a payment.
type Entry struct {
	ID              string
	Actor           string
	Action          string
	PaymentRecordID uint
	FromStatus      vo.PaymentStatus
	ToStatus        vo.PaymentStatus
	Result          Result
	Reason          string
	CreatedAt       time.Time
}

func NewEntry(actor, action string, paymentRecordID uint, from, to vo.PaymentStatus, result Result, reason string) (*Entry, error) {
	if actor == "" {
		return nil, fmt.Errorf("actor is required")
	}
	if paymentRecordID == 0 {
		return nil, fmt.Errorf("payment record ID is required")
	}
	return &Entry{
		ID:              uuid.NewString(),
		Actor:           actor,
		Action:          action,
		PaymentRecordID: paymentRecordID,
		FromStatus:      from,
		ToStatus:        to,
		Result:          result,
		Reason:          reason,
		CreatedAt:       biztime.NowUTC(),
	}, nil
}

type AuditRepository interface {
	Create(ctx context.Context, entry *Entry) error
	ListByPaymentRecordID(ctx context.Context, paymentRecordID uint) ([]*Entry, error)
}
