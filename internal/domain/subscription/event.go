package subscription

import (
	"time"

	vo "bizcard/internal/domain/subscription/valueobjects"
)

// LifecycleEvent is a gateway subscription created/updated/deleted
// notification after status mapping. CardID and OwnerID come from the
// subscription metadata and are only needed the first time a subscription is
// observed.
type LifecycleEvent struct {
	GatewaySubscriptionRef string
	GatewayCustomerRef     *string
	Status                 vo.SubscriptionStatus
	NextBillingAt          *time.Time
	CancelledAt            *time.Time
	OccurredAt             time.Time
	CardID                 uint
	OwnerID                uint
}
