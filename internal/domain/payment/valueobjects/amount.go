package valueobjects

import (
	"fmt"
	"strings"
)

const basisPointsDenominator = 10000

// Amount is a charge in integer minor units of its currency.
// The total is always derived, never supplied.
type Amount struct {
	amountMinor int64
	taxMinor    int64
	currency    string
}

// NewAmount builds an Amount from already-computed parts.
func NewAmount(amountMinor, taxMinor int64, currency string) (Amount, error) {
	if amountMinor <= 0 {
		return Amount{}, fmt.Errorf("amount must be positive, got %d", amountMinor)
	}
	if taxMinor < 0 {
		return Amount{}, fmt.Errorf("tax must not be negative, got %d", taxMinor)
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Amount{}, fmt.Errorf("invalid currency code: %q", currency)
	}
	return Amount{
		amountMinor: amountMinor,
		taxMinor:    taxMinor,
		currency:    currency,
	}, nil
}

// NewAmountWithTax computes tax from a rate in basis points, rounding half up.
func NewAmountWithTax(amountMinor, taxBasisPoints int64, currency string) (Amount, error) {
	if taxBasisPoints < 0 {
		return Amount{}, fmt.Errorf("tax rate must not be negative, got %d", taxBasisPoints)
	}
	tax := (amountMinor*taxBasisPoints + basisPointsDenominator/2) / basisPointsDenominator
	return NewAmount(amountMinor, tax, currency)
}

func (a Amount) AmountMinor() int64 {
	return a.amountMinor
}

func (a Amount) TaxMinor() int64 {
	return a.taxMinor
}

func (a Amount) TotalMinor() int64 {
	return a.amountMinor + a.taxMinor
}

func (a Amount) Currency() string {
	return a.currency
}

func (a Amount) Equals(other Amount) bool {
	return a == other
}

func (a Amount) String() string {
	return fmt.Sprintf("%d %s", a.TotalMinor(), strings.ToUpper(a.currency))
}
