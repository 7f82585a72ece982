package subscription

import "context"

type SubscriptionRecordRepository interface {
	// Upsert writes the record keyed on card ID, replacing whatever
	// subscription the card had before.
	Upsert(ctx context.Context, record *SubscriptionRecord) error
	GetByCardID(ctx context.Context, cardID uint) (*SubscriptionRecord, error)
	GetByGatewayRef(ctx context.Context, ref string) (*SubscriptionRecord, error)
	// Update persists a record previously loaded and mutated through Apply.
	// It only writes when the stored last event time is not newer than the
	// record's, and reports whether a row was written.
	Update(ctx context.Context, record *SubscriptionRecord) (bool, error)
}
