package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizcard/internal/application/payment/usecases"
	"bizcard/internal/shared/constants"
	"bizcard/internal/shared/i18n"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/utils"
)

type CheckoutHandler struct {
	createCheckoutUC createCheckoutUseCase
	logger           logger.Interface
}

func NewCheckoutHandler(createCheckoutUC createCheckoutUseCase, logger logger.Interface) *CheckoutHandler {
	return &CheckoutHandler{
		createCheckoutUC: createCheckoutUC,
		logger:           logger,
	}
}

type CreateCheckoutRequest struct {
	OwnerID      uint   `json:"owner_id" validate:"required,gt=0"`
	CardID       uint   `json:"card_id" validate:"required,gt=0"`
	Kind         string `json:"kind" validate:"required,payment_kind"`
	Method       string `json:"method" validate:"required,payment_method"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email,max=254"`
}

type CreateCheckoutResponse struct {
	Payment     *PaymentResponse `json:"payment"`
	ClientToken string           `json:"client_token,omitempty"`
}

// CreateCheckout handles POST /api/checkouts. Create a pending payment for a
// card. Card payments return a client token for the gateway widget.
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create checkout", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	lang := i18n.Match(c.GetHeader(constants.HeaderAcceptLanguage))

	result, err := h.createCheckoutUC.Execute(c.Request.Context(), usecases.CreateCheckoutCommand{
		OwnerID:      req.OwnerID,
		CardID:       req.CardID,
		Kind:         req.Kind,
		Method:       req.Method,
		ContactEmail: req.ContactEmail,
		Language:     lang,
	})
	if err != nil {
		h.logger.Warnw("failed to create checkout", "card_id", req.CardID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	payment := toPaymentResponse(result.Payment, lang)
	if result.Message != "" {
		payment.Message = result.Message
	}
	resp := CreateCheckoutResponse{
		Payment:     payment,
		ClientToken: result.ClientToken,
	}

	// A declined checkout still created a record, but nothing new is payable.
	if result.Payment.Status.IsTerminal() {
		utils.SuccessResponse(c, http.StatusOK, payment.Message, resp)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "checkout created", resp)
}
