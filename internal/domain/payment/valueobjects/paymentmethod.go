package valueobjects

import "fmt"

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func NewPaymentMethod(method string) (PaymentMethod, error) {
	pm := PaymentMethod(method)
	if !pm.IsValid() {
		return "", fmt.Errorf("invalid payment method: %s", method)
	}
	return pm, nil
}

func (pm PaymentMethod) IsValid() bool {
	return pm == PaymentMethodCard || pm == PaymentMethodBankTransfer
}

// UsesGatewayIntent reports whether checkout creates a gateway intent.
// Bank transfers are confirmed by an operator or a gateway settlement event.
func (pm PaymentMethod) UsesGatewayIntent() bool {
	return pm == PaymentMethodCard
}

func (pm PaymentMethod) String() string {
	return string(pm)
}
