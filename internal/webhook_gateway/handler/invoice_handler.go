package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/webhook_gateway/service"
)

// InvoiceHandler opens payments at the gateway
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *slog.Logger
}

func NewInvoiceHandler(logger *slog.Logger, invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// Create handles POST /invoices?processor_id=N
func (h *InvoiceHandler) Create(c *gin.Context) {
	var query ProcessorQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "processor_id query parameter must be a positive integer")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		ProcessorID: query.ProcessorID,
		OrderRef:    req.OrderRef,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		ItemCode:    req.ItemCode,
		BuyerEmail:  req.BuyerEmail,
		RedirectURL: req.RedirectURL,
	})
	if err != nil {
		h.respondCreateError(c, req.OrderRef, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

func (h *InvoiceHandler) respondCreateError(c *gin.Context, orderRef string, err error) {
	if respondProcessorError(c, err) {
		return
	}

	var (
		invalid   transaction.ErrInvalidTransaction
		duplicate transaction.ErrDuplicateOrderRef
	)
	switch {
	case errors.As(err, &invalid):
		RespondBadRequest(c, invalid.Error())
	case errors.As(err, &duplicate):
		RespondConflict(c, duplicate.Error())
	case errors.Is(err, service.ErrInvoiceCreationFailed{}):
		RespondBadGateway(c, "The payment gateway did not create the invoice")
	default:
		h.logger.Error("Failed to create invoice", "order_ref", orderRef, "error", err)
		RespondInternalError(c)
	}
}
