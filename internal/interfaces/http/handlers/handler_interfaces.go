package handlers

import (
	"context"

	"bizcard/internal/application/payment/usecases"
	"bizcard/internal/domain/audit"
)

type createCheckoutUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*usecases.CreateCheckoutResult, error)
}

type getPaymentUseCase interface {
	Execute(ctx context.Context, sid string) (*usecases.PaymentStatusResult, error)
}

type confirmPaymentUseCase interface {
	Execute(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.PaymentStatusResult, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, payload []byte, signatureHeader string) error
}

type forcePaymentStatusUseCase interface {
	Execute(ctx context.Context, cmd usecases.ForcePaymentStatusCommand) (*usecases.ForcePaymentStatusResult, error)
}

type listPaymentAuditUseCase interface {
	Execute(ctx context.Context, paymentRef string) ([]*audit.Entry, error)
}
