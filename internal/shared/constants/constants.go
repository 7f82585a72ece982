package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderXRequestID      = "X-Request-ID"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderStripeSignature = "Stripe-Signature"

	// Context keys
	ContextKeyOperatorID   = "operator_id"
	ContextKeyOperatorRole = "operator_role"
	ContextKeyRequestID    = "request_id"

	// Authorization resources and actions
	ResourcePayments  = "payments"
	ActionForceStatus = "force_status"
	ActionReadAudit   = "read_audit"
)
