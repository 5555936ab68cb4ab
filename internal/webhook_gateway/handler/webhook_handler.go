package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/reconciler"
	"github.com/invoice-reconciler/internal/webhook_gateway/middleware"
	"github.com/invoice-reconciler/internal/webhook_gateway/service"
)

// maxWebhookBodyBytes caps the notification body we are willing to read
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives gateway invoice notifications
type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *slog.Logger
}

func NewWebhookHandler(logger *slog.Logger, webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Receive handles POST /webhooks/gateway?processor_id=N. Only the invoice id
// is read from the body.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var query ProcessorQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("Webhook without a usable processor id", "processor_id", c.Query("processor_id"), "error", err)
		RespondBadRequest(c, "processor_id query parameter must be a positive integer")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", "processor_id", query.ProcessorID, "error", err)
		RespondBadRequest(c, "Unable to read request body")
		return
	}
	h.logger.Debug("Webhook received", "processor_id", query.ProcessorID, "body", string(body))

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("Malformed webhook body", "processor_id", query.ProcessorID, "error", err)
		RespondBadRequest(c, "Request body must be a JSON object")
		return
	}
	payload.ID = strings.TrimSpace(payload.ID)
	if payload.ID == "" {
		RespondBadRequest(c, "Invoice id is missing from the notification")
		return
	}

	result, err := h.webhookService.HandleNotification(c.Request.Context(), &service.Notification{
		ProcessorID:   query.ProcessorID,
		InvoiceID:     payload.ID,
		RawPayload:    body,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondReconcileError(c, payload.ID, err)
		return
	}

	RespondOK(c, mapResultToResponse(result))
}

// respondReconcileError maps failures to statuses a webhook sender can act
// on: 4xx will not succeed on retry, 5xx may.
func (h *WebhookHandler) respondReconcileError(c *gin.Context, invoiceID string, err error) {
	if respondProcessorError(c, err) {
		return
	}

	switch {
	case errors.Is(err, reconciler.ErrInvalidInvoiceID):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, reconciler.ErrGatewayUnavailable{}):
		RespondBadGateway(c, "Unable to fetch invoice from the payment gateway")
	case errors.Is(err, transaction.ErrTransactionNotFound{}):
		RespondNotFound(c, "No transaction matches invoice "+invoiceID)
	case errors.Is(err, reconciler.ErrLedgerUnavailable{}):
		RespondServiceUnavailable(c, "Ledger is temporarily unavailable")
	case errors.Is(err, reconciler.ErrLedgerWriteFailed{}):
		h.logger.Error("Ledger write failed while reconciling", "invoice_id", invoiceID, "error", err)
		RespondInternalError(c)
	default:
		h.logger.Error("Unexpected reconcile failure", "invoice_id", invoiceID, "error", err)
		RespondInternalError(c)
	}
}
