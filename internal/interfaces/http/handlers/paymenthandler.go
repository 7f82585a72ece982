package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizcard/internal/application/payment/usecases"
	"bizcard/internal/shared/constants"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/i18n"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/utils"
)

type PaymentHandler struct {
	getPaymentUC     getPaymentUseCase
	confirmPaymentUC confirmPaymentUseCase
	logger           logger.Interface
}

func NewPaymentHandler(
	getPaymentUC getPaymentUseCase,
	confirmPaymentUC confirmPaymentUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		getPaymentUC:     getPaymentUC,
		confirmPaymentUC: confirmPaymentUC,
		logger:           logger,
	}
}

type ConfirmPaymentRequest struct {
	IntentRef string `json:"intent_ref" validate:"omitempty,max=255"`
}

// GetPayment handles GET /api/payments/{id}. Return the locally recorded
// payment status and the card's publication state.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	sid := c.Param("id")
	if sid == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "payment id is required")
		return
	}

	result, err := h.getPaymentUC.Execute(c.Request.Context(), sid)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	lang := i18n.Match(c.GetHeader(constants.HeaderAcceptLanguage))
	utils.SuccessResponse(c, http.StatusOK, "", toPaymentResponse(result, lang))
}

// ConfirmPayment handles POST /api/payments/{id}/confirm. Ask the gateway for
// the current intent status and reconcile it. Safe to poll.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	sid := c.Param("id")
	if sid == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "payment id is required")
		return
	}

	var req ConfirmPaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
	}

	lang := i18n.Match(c.GetHeader(constants.HeaderAcceptLanguage))

	result, err := h.confirmPaymentUC.Execute(c.Request.Context(), usecases.ConfirmPaymentCommand{
		PaymentSID: sid,
		IntentRef:  req.IntentRef,
	})
	if err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Type == apperrors.ErrorTypeRateLimited {
			err = apperrors.NewRateLimitedError(i18n.Sprintf(lang, i18n.KeyTooManyRequests))
		} else if appErr == nil {
			h.logger.Errorw("failed to confirm payment", "payment_sid", sid, "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toPaymentResponse(result, lang))
}
