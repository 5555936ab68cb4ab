package webhook_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/invoice-reconciler/internal/webhook_gateway/handler"
	"github.com/invoice-reconciler/internal/webhook_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	webhookHandler *handler.WebhookHandler,
	invoiceHandler *handler.InvoiceHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	v1 := r.Group("/api/v1")
	{
		// Gateway callbacks. The processor is identified by the notification URL.
		v1.POST("/webhooks/gateway", webhookHandler.Receive)

		v1.POST("/invoices", invoiceHandler.Create)

		transactions := v1.Group("/transactions")
		{
			transactions.GET("/:trxn_id", transactionHandler.GetByTrxnID)
			transactions.GET("/:trxn_id/events", transactionHandler.ListStatusEvents)
			transactions.GET("/:trxn_id/notifications", transactionHandler.ListNotifications)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
