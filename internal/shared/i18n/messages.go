// Package i18n renders user-facing checkout messages in the caller's language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	KeyCheckoutDeclined    = "checkout.declined"
	KeyCheckoutUnavailable = "checkout.unavailable"
	KeyPaymentPending      = "payment.pending"
	KeyPaymentCompleted    = "payment.completed"
	KeyPaymentFailed       = "payment.failed"
	KeyTooManyRequests     = "payment.too_many_requests"
)

var supported = []language.Tag{
	language.English,
	language.Korean,
}

var (
	matcher = language.NewMatcher(supported)
	cat     = newCatalog()
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	set := func(tag language.Tag, key, msg string) {
		// Keys are static; SetString only fails on malformed tags.
		_ = b.SetString(tag, key, msg)
	}

	set(language.English, KeyCheckoutDeclined, "Your payment was declined (%s). Please try again with another payment method.")
	set(language.Korean, KeyCheckoutDeclined, "결제가 거절되었습니다 (%s). 다른 결제 수단으로 다시 시도해 주세요.")

	set(language.English, KeyCheckoutUnavailable, "The payment service is temporarily unavailable. Please try again in a moment.")
	set(language.Korean, KeyCheckoutUnavailable, "결제 서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해 주세요.")

	set(language.English, KeyPaymentPending, "Your payment is being processed.")
	set(language.Korean, KeyPaymentPending, "결제를 처리하고 있습니다.")

	set(language.English, KeyPaymentCompleted, "Your payment is complete.")
	set(language.Korean, KeyPaymentCompleted, "결제가 완료되었습니다.")

	set(language.English, KeyPaymentFailed, "Your payment could not be completed. Please start a new checkout.")
	set(language.Korean, KeyPaymentFailed, "결제를 완료하지 못했습니다. 새로 결제를 진행해 주세요.")

	set(language.English, KeyTooManyRequests, "Too many status checks. Please wait a moment.")
	set(language.Korean, KeyTooManyRequests, "상태 확인 요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.")

	return b
}

// Match picks the supported language for an Accept-Language header value.
// Unparseable or empty values fall back to English.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// Sprintf renders key in tag's language.
func Sprintf(tag language.Tag, key string, args ...interface{}) string {
	return message.NewPrinter(tag, message.Catalog(cat)).Sprintf(key, args...)
}
