package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bizcard/internal/shared/constants"
	apperrors "bizcard/internal/shared/errors"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/utils"
)

type WebhookConfig struct {
	MaxBodyBytes int64
	// Deadline bounds processing. An overrun is answered as retryable.
	Deadline time.Duration
}

type WebhookHandler struct {
	handleWebhookUC handleWebhookUseCase
	config          WebhookConfig
	logger          logger.Interface
}

func NewWebhookHandler(handleWebhookUC handleWebhookUseCase, config WebhookConfig, logger logger.Interface) *WebhookHandler {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 64 << 10
	}
	if config.Deadline <= 0 {
		config.Deadline = 10 * time.Second
	}
	return &WebhookHandler{
		handleWebhookUC: handleWebhookUC,
		config:          config,
		logger:          logger,
	}
}

// HandleStripeWebhook handles POST /api/webhooks/stripe. Receive a signed
// gateway event. 2xx acknowledges, 400 rejects, 503 asks for redelivery.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	signature := c.GetHeader(constants.HeaderStripeSignature)
	if signature == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing signature")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Deadline)
	defer cancel()

	if err := h.handleWebhookUC.Execute(ctx, payload, signature); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			h.logger.Warnw("webhook processing exceeded deadline", "deadline", h.config.Deadline, "error", err)
			utils.ErrorResponseWithError(c, apperrors.NewUnavailableError("webhook processing timed out"))
			return
		}
		if apperrors.GetAppError(err) == nil {
			h.logger.Errorw("failed to handle webhook", "error", err)
			utils.ErrorResponseWithError(c, apperrors.NewUnavailableError("webhook processing failed"))
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "received", nil)
}
