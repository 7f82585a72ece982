package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrStaleEvent           = errors.New("subscription event is older than the last applied event")
)
