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

// AdminPaymentHandler serves the operator override endpoints.
type AdminPaymentHandler struct {
	forceStatusUC forcePaymentStatusUseCase
	listAuditUC   listPaymentAuditUseCase
	logger        logger.Interface
}

func NewAdminPaymentHandler(
	forceStatusUC forcePaymentStatusUseCase,
	listAuditUC listPaymentAuditUseCase,
	logger logger.Interface,
) *AdminPaymentHandler {
	return &AdminPaymentHandler{
		forceStatusUC: forceStatusUC,
		listAuditUC:   listAuditUC,
		logger:        logger,
	}
}

type ForcePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed failed"`
	Reason string `json:"reason" validate:"max=500"`
}

type ForcePaymentStatusResponse struct {
	Payment    *PaymentResponse `json:"payment"`
	FromStatus string           `json:"from_status"`
	Result     string           `json:"result"`
	AuditID    string           `json:"audit_id"`
}

// ForceStatus handles POST /api/admin/payments/{id}/force-status. Settle or
// fail a payment as an operator. Terminal payments are never changed; every
// attempt is audited.
func (h *AdminPaymentHandler) ForceStatus(c *gin.Context) {
	paymentRef := c.Param("id")
	if paymentRef == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "payment id is required")
		return
	}

	actor := c.GetString(constants.ContextKeyOperatorID)
	if actor == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "operator not authenticated")
		return
	}

	var req ForcePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for force status", "payment_ref", paymentRef, "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.forceStatusUC.Execute(c.Request.Context(), usecases.ForcePaymentStatusCommand{
		PaymentRef:   paymentRef,
		TargetStatus: req.Status,
		Actor:        actor,
		Reason:       req.Reason,
	})
	if err != nil {
		h.logger.Warnw("force status rejected",
			"payment_ref", paymentRef,
			"operator_id", actor,
			"target", req.Status,
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	lang := i18n.Match(c.GetHeader(constants.HeaderAcceptLanguage))
	utils.SuccessResponse(c, http.StatusOK, "payment status "+string(result.Result), ForcePaymentStatusResponse{
		Payment:    toPaymentResponse(result.Payment, lang),
		FromStatus: string(result.FromStatus),
		Result:     string(result.Result),
		AuditID:    result.AuditID,
	})
}

// ListAudit handles GET /api/admin/payments/{id}/audit. List operator actions
// recorded against a payment.
func (h *AdminPaymentHandler) ListAudit(c *gin.Context) {
	paymentRef := c.Param("id")
	if paymentRef == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "payment id is required")
		return
	}

	entries, err := h.listAuditUC.Execute(c.Request.Context(), paymentRef)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toAuditEntryResponses(entries))
}
