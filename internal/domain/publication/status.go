package publication

import "fmt"

// PaymentStatus is the card-level payment status the publication rule is
// evaluated against.
type PaymentStatus string

const (
	PaymentStatusUnpaid         PaymentStatus = "unpaid"
	PaymentStatusCardPaid       PaymentStatus = "card_paid"
	PaymentStatusBankPending    PaymentStatus = "bank_pending"
	PaymentStatusBankPaid       PaymentStatus = "bank_paid"
	PaymentStatusGatewaySettled PaymentStatus = "gateway_settled"
)

// paidSet is the only place that decides which statuses allow a card to be public.
var paidSet = map[PaymentStatus]bool{
	PaymentStatusCardPaid:       true,
	PaymentStatusBankPaid:       true,
	PaymentStatusGatewaySettled: true,
}

var validStatuses = map[PaymentStatus]bool{
	PaymentStatusUnpaid:         true,
	PaymentStatusCardPaid:       true,
	PaymentStatusBankPending:    true,
	PaymentStatusBankPaid:       true,
	PaymentStatusGatewaySettled: true,
}

func NewPaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !validStatuses[status] {
		return "", fmt.Errorf("invalid card payment status: %s", s)
	}
	return status, nil
}

func (s PaymentStatus) IsValid() bool {
	return validStatuses[s]
}

// IsPaid reports whether the status is in the paid set.
func (s PaymentStatus) IsPaid() bool {
	return paidSet[s]
}

func (s PaymentStatus) String() string {
	return string(s)
}
