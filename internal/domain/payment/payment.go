package payment

import (
	"errors"
	"fmt"
	"time"

	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/id"
)

var (
	ErrPaymentNotFound    = errors.New("payment record not found")
	ErrIntentAlreadyBound = errors.New("payment record is already bound to another gateway intent")
	ErrInvalidTransition  = errors.New("invalid payment status transition")
)

// PaymentRecord is one attempt to pay for a card. It is created pending at
// checkout, moved to a terminal status only by reconciliation, and never deleted.
type PaymentRecord struct {
	id      uint
	sid     string
	ownerID uint
	cardID  uint
	kind    vo.PaymentKind
	method  vo.PaymentMethod
	amount  vo.Amount
	status  vo.PaymentStatus

	gatewayIntentRef       *string
	gatewaySubscriptionRef *string
	gatewayCustomerRef     *string

	settledVia    *vo.SettlementChannel
	paidAt        *time.Time
	failureReason *string

	metadata map[string]interface{}

	createdAt time.Time
	updatedAt time.Time
}

func NewPaymentRecord(ownerID, cardID uint, kind vo.PaymentKind, method vo.PaymentMethod, amount vo.Amount) (*PaymentRecord, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}
	if cardID == 0 {
		return nil, fmt.Errorf("card ID is required")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid payment kind: %s", kind)
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", method)
	}
	if amount.TotalMinor() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	sid, err := id.NewPaymentSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment ID: %w", err)
	}

	now := biztime.NowUTC()
	return &PaymentRecord{
		sid:       sid,
		ownerID:   ownerID,
		cardID:    cardID,
		kind:      kind,
		method:    method,
		amount:    amount,
		status:    vo.PaymentStatusPending,
		metadata:  make(map[string]interface{}),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// MarkCompleted moves a pending record to completed. Completing an already
// completed record is a no-op; completing a failed one is rejected.
func (p *PaymentRecord) MarkCompleted(via vo.SettlementChannel, at time.Time) error {
	if p.status == vo.PaymentStatusCompleted {
		return nil
	}
	if p.status != vo.PaymentStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.status, vo.PaymentStatusCompleted)
	}
	if !via.IsValid() {
		return fmt.Errorf("invalid settlement channel: %s", via)
	}

	at = at.UTC()
	p.status = vo.PaymentStatusCompleted
	p.paidAt = &at
	p.settledVia = &via
	p.updatedAt = at
	return nil
}

// MarkFailed moves a pending record to failed. Failing an already failed
// record is a no-op; failing a completed one is rejected.
func (p *PaymentRecord) MarkFailed(reason string) error {
	if p.status == vo.PaymentStatusFailed {
		return nil
	}
	if p.status != vo.PaymentStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.status, vo.PaymentStatusFailed)
	}

	p.status = vo.PaymentStatusFailed
	if reason != "" {
		p.failureReason = &reason
	}
	p.updatedAt = biztime.NowUTC()
	return nil
}

// AttachIntent binds the gateway intent. The binding is set-once; a retry with
// the same reference is accepted.
func (p *PaymentRecord) AttachIntent(ref string) error {
	if ref == "" {
		return fmt.Errorf("gateway intent reference is required")
	}
	if p.gatewayIntentRef != nil {
		if *p.gatewayIntentRef == ref {
			return nil
		}
		return ErrIntentAlreadyBound
	}
	p.gatewayIntentRef = &ref
	p.updatedAt = biztime.NowUTC()
	return nil
}

func (p *PaymentRecord) SetGatewayCustomerRef(ref string) {
	p.gatewayCustomerRef = &ref
	p.updatedAt = biztime.NowUTC()
}

func (p *PaymentRecord) SetGatewaySubscriptionRef(ref string) {
	p.gatewaySubscriptionRef = &ref
	p.updatedAt = biztime.NowUTC()
}

// SetMetadata sets a metadata key-value pair
func (p *PaymentRecord) SetMetadata(key string, value interface{}) {
	if p.metadata == nil {
		p.metadata = make(map[string]interface{})
	}
	p.metadata[key] = value
	p.updatedAt = biztime.NowUTC()
}

// SetID sets the record ID after persistence (used by repository after Create)
func (p *PaymentRecord) SetID(id uint) {
	p.id = id
}

func (p *PaymentRecord) ID() uint {
	return p.id
}

func (p *PaymentRecord) SID() string {
	return p.sid
}

func (p *PaymentRecord) OwnerID() uint {
	return p.ownerID
}

func (p *PaymentRecord) CardID() uint {
	return p.cardID
}

func (p *PaymentRecord) Kind() vo.PaymentKind {
	return p.kind
}

func (p *PaymentRecord) Method() vo.PaymentMethod {
	return p.method
}

func (p *PaymentRecord) Amount() vo.Amount {
	return p.amount
}

func (p *PaymentRecord) Status() vo.PaymentStatus {
	return p.status
}

func (p *PaymentRecord) GatewayIntentRef() *string {
	return p.gatewayIntentRef
}

func (p *PaymentRecord) GatewaySubscriptionRef() *string {
	return p.gatewaySubscriptionRef
}

func (p *PaymentRecord) GatewayCustomerRef() *string {
	return p.gatewayCustomerRef
}

func (p *PaymentRecord) SettledVia() *vo.SettlementChannel {
	return p.settledVia
}

func (p *PaymentRecord) PaidAt() *time.Time {
	return p.paidAt
}

func (p *PaymentRecord) FailureReason() *string {
	return p.failureReason
}

func (p *PaymentRecord) Metadata() map[string]interface{} {
	return p.metadata
}

func (p *PaymentRecord) CreatedAt() time.Time {
	return p.createdAt
}

func (p *PaymentRecord) UpdatedAt() time.Time {
	return p.updatedAt
}

// PaymentRecordReconstructParams carries persisted state back into the domain.
type PaymentRecordReconstructParams struct {
	ID                     uint
	SID                    string
	OwnerID                uint
	CardID                 uint
	Kind                   vo.PaymentKind
	Method                 vo.PaymentMethod
	Amount                 vo.Amount
	Status                 vo.PaymentStatus
	GatewayIntentRef       *string
	GatewaySubscriptionRef *string
	GatewayCustomerRef     *string
	SettledVia             *vo.SettlementChannel
	PaidAt                 *time.Time
	FailureReason          *string
	Metadata               map[string]interface{}
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func ReconstructPaymentRecordWithParams(p PaymentRecordReconstructParams) *PaymentRecord {
	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &PaymentRecord{
		id:                     p.ID,
		sid:                    p.SID,
		ownerID:                p.OwnerID,
		cardID:                 p.CardID,
		kind:                   p.Kind,
		method:                 p.Method,
		amount:                 p.Amount,
		status:                 p.Status,
		gatewayIntentRef:       p.GatewayIntentRef,
		gatewaySubscriptionRef: p.GatewaySubscriptionRef,
		gatewayCustomerRef:     p.GatewayCustomerRef,
		settledVia:             p.SettledVia,
		paidAt:                 p.PaidAt,
		failureReason:          p.FailureReason,
		metadata:               metadata,
		createdAt:              p.CreatedAt,
		updatedAt:              p.UpdatedAt,
	}
}
