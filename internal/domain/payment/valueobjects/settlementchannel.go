package valueobjects

// SettlementChannel records who confirmed a completed payment.
type SettlementChannel string

const (
	SettlementChannelGateway  SettlementChannel = "gateway"
	SettlementChannelOperator SettlementChannel = "operator"
)

func (c SettlementChannel) IsValid() bool {
	return c == SettlementChannelGateway || c == SettlementChannelOperator
}

func (c SettlementChannel) String() string {
	return string(c)
}
