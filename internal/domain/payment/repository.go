package payment

import (
	"context"
	"time"

	vo "bizcard/internal/domain/payment/valueobjects"
)

// PaymentRecordRepository persists payment records. Status changes go through
// the conditional methods only, each of which touches a row solely while it
// is still pending and reports whether it did.
type PaymentRecordRepository interface {
	Create(ctx context.Context, record *PaymentRecord) error
	GetByID(ctx context.Context, id uint) (*PaymentRecord, error)
	GetBySID(ctx context.Context, sid string) (*PaymentRecord, error)
	GetByGatewayIntentRef(ctx context.Context, ref string) (*PaymentRecord, error)
	ListByCardID(ctx context.Context, cardID uint) ([]*PaymentRecord, error)
	// ListStalePending returns pending records with a gateway intent that were
	// created before olderThan, oldest first.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*PaymentRecord, error)
	// ListCompletedUnfinished returns records paid before olderThan whose card
	// has no finished issuance, or that still owe a subscription, oldest first.
	ListCompletedUnfinished(ctx context.Context, olderThan time.Time, limit int) ([]*PaymentRecord, error)

	// AttachIntentRef stores the gateway intent reference when none is set.
	// It returns false when the record already carries a reference.
	AttachIntentRef(ctx context.Context, id uint, ref string) (bool, error)
	SetCustomerRef(ctx context.Context, id uint, ref string) error
	SetSubscriptionRef(ctx context.Context, id uint, ref string) error

	CompleteIfPending(ctx context.Context, id uint, via vo.SettlementChannel, paidAt time.Time) (bool, error)
	FailIfPending(ctx context.Context, id uint, reason string) (bool, error)
}
