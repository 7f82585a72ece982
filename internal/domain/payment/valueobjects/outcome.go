package valueobjects

// Outcome is the canonical meaning of a gateway, poll or operator signal
// after vocabulary mapping.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
	OutcomeUnknown   Outcome = "unknown"
)

func (o Outcome) String() string {
	return string(o)
}

// TargetStatus returns the terminal status this outcome drives a pending
// payment to. ok is false for outcomes that never move a payment.
func (o Outcome) TargetStatus() (status PaymentStatus, ok bool) {
	switch o {
	case OutcomeSucceeded:
		return PaymentStatusCompleted, true
	case OutcomeFailed:
		return PaymentStatusFailed, true
	default:
		return "", false
	}
}

// SignalSource identifies which path delivered a signal.
type SignalSource string

const (
	SignalSourceWebhook  SignalSource = "webhook"
	SignalSourcePoll     SignalSource = "poll"
	SignalSourceOperator SignalSource = "operator"
	SignalSourceSweeper  SignalSource = "sweeper"
	SignalSourceCheckout SignalSource = "checkout"
)

func (s SignalSource) String() string {
	return string(s)
}

// SettlementChannel maps the source onto who settled the payment.
func (s SignalSource) SettlementChannel() SettlementChannel {
	if s == SignalSourceOperator {
		return SettlementChannelOperator
	}
	return SettlementChannelGateway
}
