package subscription

import (
	"fmt"
	"time"

	vo "bizcard/internal/domain/subscription/valueobjects"
	"bizcard/internal/shared/biztime"
)

// SubscriptionRecord mirrors a gateway recurring charge for one card. There
// is at most one record per card; a fresh subscription overwrites it.
type SubscriptionRecord struct {
	id                     uint
	ownerID                uint
	cardID                 uint
	gatewaySubscriptionRef string
	gatewayCustomerRef     *string
	status                 vo.SubscriptionStatus
	nextBillingAt          *time.Time
	cancelledAt            *time.Time
	lastEventAt            *time.Time
	createdAt              time.Time
	updatedAt              time.Time
}

func NewSubscriptionRecord(ownerID, cardID uint, gatewayRef string, customerRef *string, nextBillingAt *time.Time) (*SubscriptionRecord, error) {
	if cardID == 0 {
		return nil, fmt.Errorf("card ID is required")
	}
	if gatewayRef == "" {
		return nil, fmt.Errorf("gateway subscription reference is required")
	}

	now := biztime.NowUTC()
	return &SubscriptionRecord{
		ownerID:                ownerID,
		cardID:                 cardID,
		gatewaySubscriptionRef: gatewayRef,
		gatewayCustomerRef:     customerRef,
		status:                 vo.StatusActive,
		nextBillingAt:          nextBillingAt,
		createdAt:              now,
		updatedAt:              now,
	}, nil
}

// Apply folds a gateway lifecycle event into the record. Events older than
// the last applied one return ErrStaleEvent and leave the record untouched.
func (s *SubscriptionRecord) Apply(event LifecycleEvent) error {
	if event.GatewaySubscriptionRef != s.gatewaySubscriptionRef {
		return fmt.Errorf("event for %s applied to subscription %s", event.GatewaySubscriptionRef, s.gatewaySubscriptionRef)
	}
	if s.lastEventAt != nil && event.OccurredAt.Before(*s.lastEventAt) {
		return ErrStaleEvent
	}

	occurred := event.OccurredAt.UTC()
	s.lastEventAt = &occurred
	s.status = event.Status
	if event.NextBillingAt != nil {
		s.nextBillingAt = event.NextBillingAt
	}

	if event.Status.IsActive() {
		s.cancelledAt = nil
	} else {
		cancelledAt := occurred
		if event.CancelledAt != nil {
			cancelledAt = event.CancelledAt.UTC()
		}
		s.cancelledAt = &cancelledAt
		s.nextBillingAt = nil
	}

	s.updatedAt = biztime.NowUTC()
	return nil
}

func (s *SubscriptionRecord) SetID(id uint) {
	s.id = id
}

func (s *SubscriptionRecord) ID() uint {
	return s.id
}

func (s *SubscriptionRecord) OwnerID() uint {
	return s.ownerID
}

func (s *SubscriptionRecord) CardID() uint {
	return s.cardID
}

func (s *SubscriptionRecord) GatewaySubscriptionRef() string {
	return s.gatewaySubscriptionRef
}

func (s *SubscriptionRecord) GatewayCustomerRef() *string {
	return s.gatewayCustomerRef
}

func (s *SubscriptionRecord) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *SubscriptionRecord) NextBillingAt() *time.Time {
	return s.nextBillingAt
}

func (s *SubscriptionRecord) CancelledAt() *time.Time {
	return s.cancelledAt
}

func (s *SubscriptionRecord) LastEventAt() *time.Time {
	return s.lastEventAt
}

func (s *SubscriptionRecord) CreatedAt() time.Time {
	return s.createdAt
}

func (s *SubscriptionRecord) UpdatedAt() time.Time {
	return s.updatedAt
}

type SubscriptionRecordReconstructParams struct {
	ID                     uint
	OwnerID                uint
	CardID                 uint
	GatewaySubscriptionRef string
	GatewayCustomerRef     *string
	Status                 vo.SubscriptionStatus
	NextBillingAt          *time.Time
	CancelledAt            *time.Time
	LastEventAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func ReconstructSubscriptionRecordWithParams(p SubscriptionRecordReconstructParams) *SubscriptionRecord {
	return &SubscriptionRecord{
		id:                     p.ID,
		ownerID:                p.OwnerID,
		cardID:                 p.CardID,
		gatewaySubscriptionRef: p.GatewaySubscriptionRef,
		gatewayCustomerRef:     p.GatewayCustomerRef,
		status:                 p.Status,
		nextBillingAt:          p.NextBillingAt,
		cancelledAt:            p.CancelledAt,
		lastEventAt:            p.LastEventAt,
		createdAt:              p.CreatedAt,
		updatedAt:              p.UpdatedAt,
	}
}
