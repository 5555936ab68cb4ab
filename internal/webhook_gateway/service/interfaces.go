package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/invoice-reconciler/internal/domain/invoice"
	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/domain/outbox"
	"github.com/invoice-reconciler/internal/domain/processor"
	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/reconciler"
)

// GatewayProvider builds a gateway client for a resolved processor
type GatewayProvider interface {
	ForProcessor(p *processor.Processor) (invoice.Gateway, error)
}

// Notification is a decoded webhook delivery
type Notification struct {
	ProcessorID   int64
	InvoiceID     string
	RawPayload    []byte
	CorrelationID string
}

// WebhookService reconciles the ledger against the gateway for one webhook
type WebhookService interface {
	// HandleNotification resolves the processor and reconciles the invoice.
	// Processor errors are returned unwrapped; reconcile errors are the
	// reconciler's typed errors.
	HandleNotification(ctx context.Context, n *Notification) (*reconciler.Result, error)
}

// CreateInvoiceInput holds the merchant's payment request
type CreateInvoiceInput struct {
	ProcessorID int64
	OrderRef    string
	Amount      decimal.Decimal
	Currency    string
	Description string
	ItemCode    string
	BuyerEmail  string
	RedirectURL string
}

// InvoiceService opens payments at the gateway
type InvoiceService interface {
	// CreateInvoice records a transaction, asks the gateway for an invoice
	// and moves the transaction to pending.
	// Returns ErrDuplicateOrderRef, ErrInvalidTransaction or ErrInvoiceCreationFailed.
	CreateInvoice(ctx context.Context, in *CreateInvoiceInput) (*transaction.Transaction, error)
}

// TransactionService exposes read access to transactions and their history
type TransactionService interface {
	GetByTrxnID(ctx context.Context, trxnID string) (*transaction.Transaction, error)
	ListStatusEvents(ctx context.Context, trxnID string) ([]*outbox.Message, error)
	ListNotifications(ctx context.Context, trxnID string, limit int64) ([]*notification.Record, error)
}
