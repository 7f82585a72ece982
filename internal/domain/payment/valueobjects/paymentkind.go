package valueobjects

import "fmt"

type PaymentKind string

const (
	PaymentKindNewSubscriberInitial      PaymentKind = "new_subscriber_initial"
	PaymentKindExistingSubscriberInitial PaymentKind = "existing_subscriber_initial"
)

func NewPaymentKind(kind string) (PaymentKind, error) {
	k := PaymentKind(kind)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid payment kind: %s", kind)
	}
	return k, nil
}

func (k PaymentKind) IsValid() bool {
	return k == PaymentKindNewSubscriberInitial || k == PaymentKindExistingSubscriberInitial
}

// RequiresSubscription reports whether completing this payment starts
// recurring billing. Existing subscribers already have one.
func (k PaymentKind) RequiresSubscription() bool {
	return k == PaymentKindNewSubscriberInitial
}

func (k PaymentKind) String() string {
	return string(k)
}
