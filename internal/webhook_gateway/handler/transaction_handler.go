package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/webhook_gateway/service"
)

// TransactionHandler serves read access to transactions
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// GetByTrxnID returns the transaction for a gateway invoice id, or 404
func (h *TransactionHandler) GetByTrxnID(c *gin.Context) {
	trxnID := c.Param("trxn_id")

	txn, err := h.transactionService.GetByTrxnID(c.Request.Context(), trxnID)
	if err != nil {
		h.respondLookupError(c, trxnID, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// ListStatusEvents returns the status changes recorded for the transaction
func (h *TransactionHandler) ListStatusEvents(c *gin.Context) {
	trxnID := c.Param("trxn_id")

	messages, err := h.transactionService.ListStatusEvents(c.Request.Context(), trxnID)
	if err != nil {
		h.respondLookupError(c, trxnID, err)
		return
	}

	events := make([]StatusEventResponse, 0, len(messages))
	for _, m := range messages {
		events = append(events, mapStatusEventToResponse(m))
	}
	RespondWithList(c, events, len(events))
}

// ListNotifications returns the webhooks received for the transaction's invoice
func (h *TransactionHandler) ListNotifications(c *gin.Context) {
	trxnID := c.Param("trxn_id")

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "limit must be between 1 and 500")
		return
	}

	records, err := h.transactionService.ListNotifications(c.Request.Context(), trxnID, query.Limit)
	if err != nil {
		if errors.As(err, &service.ErrNotificationsUnavailable{}) {
			RespondServiceUnavailable(c, err.Error())
			return
		}
		h.respondLookupError(c, trxnID, err)
		return
	}

	notifications := make([]NotificationResponse, 0, len(records))
	for _, r := range records {
		notifications = append(notifications, mapNotificationToResponse(r))
	}
	RespondWithList(c, notifications, len(notifications))
}

func (h *TransactionHandler) respondLookupError(c *gin.Context, trxnID string, err error) {
	if errors.Is(err, transaction.ErrTransactionNotFound{}) {
		RespondNotFound(c, "Transaction not found")
		return
	}
	h.logger.Error("Failed to load transaction", "trxn_id", trxnID, "error", err)
	RespondInternalError(c)
}
