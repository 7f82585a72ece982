package payment

import vo "bizcard/internal/domain/payment/valueobjects"

// Decision is what reconciliation should do with a signal given the
// record's current status.
type Decision string

const (
	// DecisionApply moves a pending record to the signal's terminal status.
	DecisionApply Decision = "apply"
	// DecisionNoop means the record is already in the requested terminal status.
	DecisionNoop Decision = "noop"
	// DecisionConflict means the record is terminal in the opposite status.
	// The signal is dropped and logged.
	DecisionConflict Decision = "conflict"
	// DecisionIgnore covers pending and unmapped signals.
	DecisionIgnore Decision = "ignore"
)

func (d Decision) String() string {
	return string(d)
}

// Decide is the single transition rule for payment records. Both terminal
// statuses are sticky.
func Decide(current vo.PaymentStatus, outcome vo.Outcome) (Decision, vo.PaymentStatus) {
	target, ok := outcome.TargetStatus()
	if !ok {
		return DecisionIgnore, current
	}

	switch {
	case current.IsPending():
		return DecisionApply, target
	case current == target:
		return DecisionNoop, current
	default:
		return DecisionConflict, current
	}
}
