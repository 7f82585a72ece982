package email

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no minor unit; an amount of 33000 KRW is stored
// as 33000.
var zeroDecimalCurrencies = map[string]bool{
	"jpy": true,
	"krw": true,
	"vnd": true,
}

// FormatAmount renders minor units for display, e.g. 1234 usd -> "12.34 USD".
func FormatAmount(minor int64, currency string) string {
	currency = strings.ToLower(currency)

	places := int32(2)
	if zeroDecimalCurrencies[currency] {
		places = 0
	}

	return decimal.New(minor, -places).StringFixed(places) + " " + strings.ToUpper(currency)
}
